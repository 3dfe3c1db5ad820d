package extract

import (
	"fmt"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// Statement renders a claim as one human-readable sentence:
//
//	Jane Doe is a contractor for Acme Corp from 2024-01-01 (ongoing) (USD 50000.00)
func Statement(c model.Claim) string {
	parts := []string{"[Subject]"}
	if c.Subject != nil {
		parts[0] = *c.Subject
	}

	role := c.Role
	if role == "" {
		role = model.RoleUnknown
	}
	parts = append(parts, "is a", string(role))

	if c.Entity != nil {
		parts = append(parts, "for", *c.Entity)
	}
	if c.StartDate != nil {
		parts = append(parts, "from", *c.StartDate)
	}
	switch {
	case c.EndDate != nil:
		parts = append(parts, "until", *c.EndDate)
	case c.StartDate != nil:
		parts = append(parts, "(ongoing)")
	}

	if c.Amount != nil {
		currency := "USD"
		if c.Currency != nil {
			currency = *c.Currency
		}
		parts = append(parts, fmt.Sprintf("(%s %.2f)", currency, *c.Amount))
	}
	return strings.Join(parts, " ")
}
