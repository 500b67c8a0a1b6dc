package checkout

import (
	"strings"
	"unicode"

	"cresshoe/internal/model"

	"github.com/shopspring/decimal"
)

// NormalizePhone strips every character except digits and a single leading '+'.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var b strings.Builder
	b.Grow(len(phone))
	if strings.HasPrefix(phone, "+") {
		b.WriteByte('+')
	}
	for _, r := range phone {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// BuildPayload assembles an order from customer fields and cart lines. The
// total is computed from the lines passed in.
func BuildPayload(fields model.CustomerFields, items []model.CartLineItem) *model.OrderPayload {
	lines := make([]model.OrderLine, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		line := model.OrderLine{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			UnitPrice:   item.Product.Price,
			Size:        item.Size,
			Quantity:    item.Quantity,
		}
		total = total.Add(line.Subtotal())
		lines = append(lines, line)
	}

	return &model.OrderPayload{
		Name:    strings.TrimSpace(fields.Name),
		Phone:   NormalizePhone(fields.Phone),
		Email:   strings.TrimSpace(fields.Email),
		Address: strings.TrimSpace(fields.Address),
		Notes:   strings.TrimSpace(fields.Notes),
		Lines:   lines,
		Total:   total,
	}
}
