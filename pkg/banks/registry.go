package banks

import (
	"github.com/ArionMiles/lunchsync/pkg/accounts"
	"github.com/ArionMiles/lunchsync/pkg/api"
)

// Registry holds the known parsers in registration order. Selection is
// first-match-wins, so order is part of the detection contract.
type Registry struct {
	parsers []api.Parser
}

// NewRegistry builds a registry with every supported bank format registered
// in its canonical order.
func NewRegistry(resolver *accounts.Resolver) *Registry {
	r := &Registry{}
	r.Register(NewOCBCCredit(resolver))
	r.Register(NewOCBC360(resolver))
	r.Register(NewDBSSavings(resolver))
	r.Register(NewDBSCredit(resolver))
	r.Register(NewUOBCredit(resolver))
	r.Register(NewHSBCRevolution())
	r.Register(NewCiti(resolver))
	return r
}

// Register appends p unless a parser with the same name is already present.
func (r *Registry) Register(p api.Parser) {
	for _, existing := range r.parsers {
		if existing.Name() == p.Name() {
			return
		}
	}
	r.parsers = append(r.parsers, p)
}

// Select returns the first parser accepting the content, or nil when none
// does.
func (r *Registry) Select(content, filepath string) api.Parser {
	for _, p := range r.parsers {
		if p.CanParse(content, filepath) {
			return p
		}
	}
	return nil
}

// All returns the registered parsers in registration order.
func (r *Registry) All() []api.Parser {
	return append([]api.Parser(nil), r.parsers...)
}
