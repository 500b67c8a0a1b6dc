package checkout

import (
	"strconv"
	"strings"

	"cresshoe/internal/model"

	"github.com/shopspring/decimal"
)

// FormatPrice renders amount with the currency prefix and grouped thousands,
// e.g. KSh11,000. Fractions are kept to two places and dropped when zero.
func FormatPrice(amount decimal.Decimal, currency string) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(currency)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// RenderMessage renders an order as the human-readable text sent through a
// messaging link.
func RenderMessage(p *model.OrderPayload, currency string) string {
	var b strings.Builder

	b.WriteString("*New Order*\n\n")
	b.WriteString("*Customer Details:*\n")
	b.WriteString("Name: " + p.Name + "\n")
	b.WriteString("Phone: " + p.Phone + "\n")
	if p.Email != "" {
		b.WriteString("Email: " + p.Email + "\n")
	}
	if p.Address != "" {
		b.WriteString("Address: " + p.Address + "\n")
	}
	if p.Notes != "" {
		b.WriteString("Notes: " + p.Notes + "\n")
	}

	b.WriteString("\n*Order Items:*\n")
	for i, line := range p.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• " + line.ProductName)
		b.WriteString(" (Size: " + strconv.Itoa(line.Size) + ")")
		b.WriteString(" x" + strconv.Itoa(line.Quantity))
		b.WriteString(" - " + FormatPrice(line.Subtotal(), currency))
	}

	b.WriteString("\n\n*Total: " + FormatPrice(p.Total, currency) + "*")
	return b.String()
}
