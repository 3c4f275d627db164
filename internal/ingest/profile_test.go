package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&Profile{Name: "bank"})
	p := r.Get("bank")
	require.NotNil(t, p)
	assert.Equal(t, "bank", p.Name)
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("IBM-AML"))
	assert.NotNil(t, r.Get("Generic"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&Profile{Name: "bank"})
	assert.Panics(t, func() { r.Register(&Profile{Name: "BANK"}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	names := make([]string, 0)
	for _, p := range r.All() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"customer", "generic", "ibm-aml"}, names)
	assert.True(t, r.Get("ibm-aml").TwoSided)
	assert.False(t, r.Get("generic").TwoSided)
}

func TestProfile_OptionsOverride(t *testing.T) {
	p := DefaultRegistry().Get("ibm-aml")
	assert.True(t, p.Options(nil).TwoSided)

	off := false
	opts := p.Options(&off)
	assert.False(t, opts.TwoSided)
	assert.Equal(t, []Field{FieldFromBank, FieldToBank}, opts.Required)
}
