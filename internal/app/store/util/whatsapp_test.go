package util

import (
	"net/url"
	"strings"
	"testing"

	"homenest/internal/app/store/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWhatsAppLink(t *testing.T) {
	order := &entity.Order{
		OrderNumber:   "ORD-20260042",
		Total:         300.0,
		PaymentMethod: entity.PaymentAdvance,
		Items: []entity.OrderItem{
			{Name: "Ceramic Vase", Quantity: 2, Price: 100.0},
		},
	}

	link := BuildWhatsAppLink("94771234567", order)

	require.True(t, strings.HasPrefix(link, "https://wa.me/94771234567?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	text := parsed.Query().Get("text")
	assert.Contains(t, text, "order ORD-20260042")
	assert.Contains(t, text, "- Ceramic Vase x2 (Rs. 100.00)")
	assert.Contains(t, text, "Total: Rs. 300.00")
	assert.Contains(t, text, "Payment: advance")
}

func TestBuildWhatsAppLink_NoPhoneConfigured(t *testing.T) {
	link := BuildWhatsAppLink("", &entity.Order{OrderNumber: "ORD-20260001"})
	assert.Empty(t, link)
}
