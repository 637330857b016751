package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineAndGet(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Define("x", 1))

	v, ok := s.Get("x", false)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestDefineRejectsRedeclarationInSameScope(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Define("x", 1))
	err := s.Define("x", 2)
	assert.Error(t, err)
}

func TestGetSearchesAncestorChain(t *testing.T) {
	parent := New(nil)
	require.NoError(t, parent.Define("x", "outer"))
	child := New(parent)

	v, ok := child.Get("x", false)
	assert.True(t, ok)
	assert.Equal(t, "outer", v)
}

func TestGetCurrentOnlyDoesNotSearchAncestors(t *testing.T) {
	parent := New(nil)
	require.NoError(t, parent.Define("x", "outer"))
	child := New(parent)

	_, ok := child.Get("x", true)
	assert.False(t, ok)
}

func TestChildCanShadowParentBinding(t *testing.T) {
	parent := New(nil)
	require.NoError(t, parent.Define("x", "outer"))
	child := New(parent)
	require.NoError(t, child.Define("x", "inner"))

	v, _ := child.Get("x", false)
	assert.Equal(t, "inner", v)

	pv, _ := parent.Get("x", false)
	assert.Equal(t, "outer", pv)
}

func TestGetMissingNameReturnsFalse(t *testing.T) {
	s := New(nil)
	_, ok := s.Get("missing", false)
	assert.False(t, ok)
}

func TestSetMutatesNearestEnclosingBinding(t *testing.T) {
	parent := New(nil)
	require.NoError(t, parent.Define("x", 1))
	child := New(parent)

	ok := child.Set("x", 2)
	assert.True(t, ok)

	v, _ := parent.Get("x", false)
	assert.Equal(t, 2, v)
}

func TestSetReturnsFalseForUnboundName(t *testing.T) {
	s := New(nil)
	ok := s.Set("missing", 1)
	assert.False(t, ok)
}

func TestNamesReturnsDeclarationOrder(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Define("b", 1))
	require.NoError(t, s.Define("a", 2))
	require.NoError(t, s.Define("c", 3))

	assert.Equal(t, []string{"b", "a", "c"}, s.Names())
}

func TestParentReturnsEnclosingScope(t *testing.T) {
	parent := New(nil)
	child := New(parent)
	assert.Same(t, parent, child.Parent())
	assert.Nil(t, parent.Parent())
}
