// Package catalog supplies the category set the matcher and dialog work
// against: the user's remote catalog when reachable, the fixed built-in one
// otherwise. A failed fetch degrades, it never blocks the dialog.
package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/minhdn/jarbot/internal/domain"
	"github.com/minhdn/jarbot/internal/ledger"
)

// Provider fetches a user's catalog with fallback. Remote caching lives in
// the ledger client; Provider adds no second cache layer.
type Provider struct {
	svc      ledger.Service
	fallback []domain.Category
	log      zerolog.Logger
}

// NewProvider creates a Provider. A nil fallback uses the built-in catalog.
func NewProvider(svc ledger.Service, fallback []domain.Category, log zerolog.Logger) *Provider {
	if fallback == nil {
		fallback = Fallback()
	}
	return &Provider{svc: svc, fallback: fallback, log: log}
}

// Categories returns the user's catalog, falling back to the static one on
// any fetch error. degraded reports which one the caller got.
func (p *Provider) Categories(ctx context.Context, id ledger.Identity) (cats []domain.Category, degraded bool) {
	cats, err := p.svc.GetCategories(ctx, id)
	if err != nil || len(cats) == 0 {
		p.log.Warn().Err(err).Str("user", string(id.User)).
			Str("fallback", FallbackVersion).Msg("using fallback catalog")
		return p.fallback, true
	}
	return cats, false
}

// ForKind filters a catalog down to the entries usable for one intent kind.
// Investment intents draw from expense-side categories.
func ForKind(cats []domain.Category, kind domain.Kind) []domain.Category {
	want := kind
	if kind == domain.KindInvestment {
		want = domain.KindExpense
	}
	var out []domain.Category
	for _, c := range cats {
		if c.Kind == want || c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// FindByID looks a category up by its catalog id.
func FindByID(cats []domain.Category, id string) (domain.Category, bool) {
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Category{}, false
}
