package extract

import (
	"context"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// NER recognises named entities in text. Implementations may call out to
// a model server; a nil NER disables the pass.
type NER interface {
	Entities(ctx context.Context, text string) (model.Entities, error)
}

// NoopNER finds nothing
type NoopNER struct{}

// Entities returns an empty set
func (NoopNER) Entities(context.Context, string) (model.Entities, error) {
	return model.Entities{}, nil
}

// applyEntities fills empty claim fields from recognised entities.
// It reports whether any field was taken from them.
func applyEntities(ents model.Entities, claim *model.Claim) bool {
	used := false
	if claim.Subject == nil && len(ents.Organizations) > 0 {
		claim.Subject = model.Str(ents.Organizations[0])
		used = claim.Subject != nil
	}
	if claim.Entity == nil && len(ents.Persons) > 0 {
		if claim.Entity = model.Str(ents.Persons[0]); claim.Entity != nil {
			used = true
		}
	}
	if claim.StartDate == nil && len(ents.Dates) > 0 {
		if d, ok := ParseDate(ents.Dates[0]); ok {
			claim.StartDate = model.Str(d)
			used = true
		}
	}
	if claim.Amount == nil {
		for _, m := range ents.Money {
			if m.Amount <= 0 {
				continue
			}
			claim.Amount = model.Float(m.Amount)
			claim.Currency = model.Str(m.Currency)
			used = true
			break
		}
	}
	return used
}
