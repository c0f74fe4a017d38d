package playerreg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateAssignsDefaultNameAndIndexesBothWays(t *testing.T) {
	r := New()
	session := new(int)

	p := r.Create(session)
	assert.True(t, strings.HasPrefix(p.Name, defaultNamePrefix))
	assert.NotEmpty(t, p.Id)

	got, ok := r.BySession(session)
	assert.True(t, ok)
	assert.Same(t, p, got)

	byId, ok := r.ById(p.Id)
	assert.True(t, ok)
	assert.Same(t, p, byId)
}

func TestSetNameValidates(t *testing.T) {
	r := New()
	p := r.Create(new(int))

	assert.NoError(t, r.SetName(p, "  Alice  "))
	assert.Equal(t, "Alice", p.Name)

	assert.Error(t, r.SetName(p, "   "))
	assert.Error(t, r.SetName(p, strings.Repeat("x", maxNameLen+1)))
}

func TestRemoveIsIdempotentAndClearsBothIndices(t *testing.T) {
	r := New()
	session := new(int)
	p := r.Create(session)

	r.Remove(session)
	_, ok := r.BySession(session)
	assert.False(t, ok)
	_, ok = r.ById(p.Id)
	assert.False(t, ok)

	assert.NotPanics(t, func() { r.Remove(session) })
}

func TestCountReflectsLiveRegistrations(t *testing.T) {
	r := New()
	assert.Equal(t, 0, r.Count())
	r.Create(new(int))
	r.Create(new(int))
	assert.Equal(t, 2, r.Count())
}
