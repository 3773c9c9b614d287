package sender

import (
	"fmt"
	"strings"

	"order-service/models"
)

// OrderConfirmationSubject builds the subject line for a confirmation email.
func OrderConfirmationSubject(order *models.Order) string {
	return fmt.Sprintf("Order %s confirmed", order.OrderNumber)
}

// OrderConfirmationBody renders a small HTML summary of the order.
func OrderConfirmationBody(order *models.Order) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Thanks for your order, %s!</h2>", order.ShippingAddress.FullName))
	b.WriteString(fmt.Sprintf("<p>Order number: <strong>%s</strong></p>", order.OrderNumber))
	b.WriteString("<ul>")
	for _, item := range order.OrderItems {
		b.WriteString(fmt.Sprintf("<li>%s &times; %d — %s</li>", item.Name, item.Quantity, item.Price.StringFixed(2)))
	}
	b.WriteString("</ul>")
	b.WriteString(fmt.Sprintf("<p>Subtotal: %s<br>Tax: %s<br>Shipping: %s<br><strong>Total: %s</strong></p>",
		order.Subtotal.StringFixed(2),
		order.TaxPrice.StringFixed(2),
		order.ShippingPrice.StringFixed(2),
		order.TotalPrice.StringFixed(2),
	))
	b.WriteString(fmt.Sprintf("<p>Shipping to: %s, %s, %s</p>",
		order.ShippingAddress.Address,
		order.ShippingAddress.City,
		order.ShippingAddress.Country,
	))
	return b.String()
}
