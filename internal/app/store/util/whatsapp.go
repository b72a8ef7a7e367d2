package util

import (
	"fmt"
	"net/url"
	"strings"

	"homenest/internal/app/store/entity"
)

// BuildWhatsAppLink собирает deep link wa.me с текстом подтверждения заказа.
// Ссылка возвращается покупателю вместе с созданным заказом: по клику
// открывается чат с магазином с уже заполненным сообщением.
func BuildWhatsAppLink(phone string, order *entity.Order) string {
	if phone == "" {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello! I have placed order %s.\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&sb, "- %s x%d (Rs. %.2f)\n", item.Name, item.Quantity, item.Price)
	}
	fmt.Fprintf(&sb, "Total: Rs. %.2f\n", order.Total)
	fmt.Fprintf(&sb, "Payment: %s", order.PaymentMethod)

	return fmt.Sprintf("https://wa.me/%s?text=%s", phone, url.QueryEscape(sb.String()))
}
