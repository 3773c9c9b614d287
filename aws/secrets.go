package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// DBCredentialsSecret is the Secrets Manager entry holding the order
// database credentials.
const DBCredentialsSecret = "order/DB_CREDENTIALS"

// DBCredentials is the payload stored under DBCredentialsSecret. Keys match
// the POSTGRES_* environment variables they override; empty fields leave
// the corresponding env value in place.
type DBCredentials struct {
	User     string `json:"POSTGRES_USER"`
	Password string `json:"POSTGRES_PASSWORD"`
	DBName   string `json:"POSTGRES_DB"`
	Host     string `json:"POSTGRES_HOST"`
	Port     string `json:"POSTGRES_PORT"`
}

// SecretsClient reads service secrets, caching each secret for the process
// lifetime. Secrets are only read at startup, so there is no invalidation.
type SecretsClient struct {
	client *secretsmanager.Client
	cache  map[string]string
	mu     sync.RWMutex
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return &SecretsClient{
		client: secretsmanager.NewFromConfig(cfg),
		cache:  make(map[string]string),
	}
}

// GetDBCredentials fetches and decodes the order database credentials.
func (s *SecretsClient) GetDBCredentials(ctx context.Context) (*DBCredentials, error) {
	raw, err := s.getSecret(ctx, DBCredentialsSecret)
	if err != nil {
		return nil, err
	}
	return parseDBCredentials([]byte(raw))
}

func parseDBCredentials(raw []byte) (*DBCredentials, error) {
	var creds DBCredentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("malformed %s secret: %w", DBCredentialsSecret, err)
	}
	return &creds, nil
}

func (s *SecretsClient) getSecret(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	if v, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &name})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}

	s.mu.Lock()
	s.cache[name] = *out.SecretString
	s.mu.Unlock()

	return *out.SecretString, nil
}
