package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	aws_pkg "order-service/aws"
)

func TestApplyDBCredentials_OverlaysOnlyPresentFields(t *testing.T) {
	cfg := &Config{
		PostgresUser:     "env_user",
		PostgresPassword: "env_pass",
		PostgresDB:       "env_db",
		PostgresHost:     "env_host",
		PostgresPort:     "5432",
	}

	cfg.applyDBCredentials(&aws_pkg.DBCredentials{
		User:     "secret_user",
		Password: "secret_pass",
	})

	assert.Equal(t, "secret_user", cfg.PostgresUser)
	assert.Equal(t, "secret_pass", cfg.PostgresPassword)
	assert.Equal(t, "env_db", cfg.PostgresDB, "fields absent from the secret keep their env values")
	assert.Equal(t, "env_host", cfg.PostgresHost)
	assert.Equal(t, "5432", cfg.PostgresPort)
}
