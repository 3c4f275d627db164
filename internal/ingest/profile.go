package ingest

import (
	"sort"
	"strings"
)

// Profile is a named ledger layout.
type Profile struct {
	Name        string
	Description string
	TwoSided    bool
	Required    []Field
}

// Options returns the resolve options for this profile, letting twoSided
// override the profile default when non-nil.
func (p *Profile) Options(twoSided *bool) ResolveOptions {
	opts := ResolveOptions{TwoSided: p.TwoSided, Required: p.Required}
	if twoSided != nil {
		opts.TwoSided = *twoSided
	}
	return opts
}

// Registry holds named profiles.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry creates an empty profile registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// Register adds a profile. Panics on duplicate name.
func (r *Registry) Register(p *Profile) {
	key := strings.ToLower(p.Name)
	if _, ok := r.profiles[key]; ok {
		panic("duplicate schema profile: " + key)
	}
	r.profiles[key] = p
}

// Get returns the profile for name, or nil.
func (r *Registry) Get(name string) *Profile {
	return r.profiles[strings.ToLower(name)]
}

// All returns every profile sorted by name.
func (r *Registry) All() []*Profile {
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultRegistry returns a registry with all built-in profiles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&Profile{
		Name:        "generic",
		Description: "single-sided ledger with amount and payment format",
	})
	r.Register(&Profile{
		Name:        "customer",
		Description: "per-customer ledger (customer_id, receiving_bank, is_laundering)",
		Required:    []Field{FieldIsLaundering, FieldFromAccount, FieldToBank},
	})
	r.Register(&Profile{
		Name:        "ibm-aml",
		Description: "two-sided interbank ledger with duplicate Account columns",
		TwoSided:    true,
		Required:    []Field{FieldFromBank, FieldToBank},
	})
	return r
}
