package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSelectionState(t *testing.T) {
	t.Run("starts empty", func(t *testing.T) {
		s := NewSelectionState()
		assert.Equal(t, SelectionNone, s.Mode())
		assert.Zero(t, s.Count())
		assert.True(t, s.Scope().IsEmpty())
	})

	t.Run("toggle moves none to explicit and back", func(t *testing.T) {
		s := NewSelectionState()
		id := uuid.New()

		s.Toggle(id, nil)
		assert.Equal(t, SelectionExplicit, s.Mode())
		assert.True(t, s.Contains(id))

		s.Toggle(id, nil)
		assert.Equal(t, SelectionNone, s.Mode())
		assert.Zero(t, s.Count())
	})

	t.Run("toggle in all-filtered downgrades to the page minus the toggled id", func(t *testing.T) {
		s := NewSelectionState()
		s.SelectAllFiltered()

		page := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		s.Toggle(page[1], page)

		assert.Equal(t, SelectionExplicit, s.Mode())
		assert.Equal(t, 2, s.Count())
		assert.True(t, s.Contains(page[0]))
		assert.False(t, s.Contains(page[1]))
		assert.True(t, s.Contains(page[2]))
	})

	t.Run("toggle in all-filtered with a single-row page clears the selection", func(t *testing.T) {
		s := NewSelectionState()
		s.SelectAllFiltered()

		id := uuid.New()
		s.Toggle(id, []uuid.UUID{id})

		assert.Equal(t, SelectionNone, s.Mode())
		assert.True(t, s.Scope().IsEmpty())
	})

	t.Run("select-page is a toggle-all", func(t *testing.T) {
		s := NewSelectionState()
		page := []uuid.UUID{uuid.New(), uuid.New()}

		s.SelectPage(page)
		assert.Equal(t, SelectionExplicit, s.Mode())
		assert.Equal(t, 2, s.Count())

		s.SelectPage(page)
		assert.Equal(t, SelectionNone, s.Mode())
		assert.Zero(t, s.Count())
	})

	t.Run("select-page over a partial selection replaces it", func(t *testing.T) {
		s := NewSelectionState()
		page := []uuid.UUID{uuid.New(), uuid.New()}

		s.Toggle(page[0], page)
		s.SelectPage(page)

		assert.Equal(t, 2, s.Count())
	})

	t.Run("all-filtered keeps no explicit ids", func(t *testing.T) {
		s := NewSelectionState()
		s.Toggle(uuid.New(), nil)

		s.SelectAllFiltered()

		assert.Equal(t, SelectionAllFiltered, s.Mode())
		assert.Zero(t, s.Count())

		scope := s.Scope()
		assert.True(t, scope.AllFiltered)
		assert.Empty(t, scope.IDs)
		assert.False(t, scope.IsEmpty())
	})

	t.Run("clear resets any mode", func(t *testing.T) {
		s := NewSelectionState()
		s.SelectAllFiltered()
		s.Clear()

		assert.Equal(t, SelectionNone, s.Mode())
		assert.True(t, s.Scope().IsEmpty())
	})
}

func TestSelectionModeIsValid(t *testing.T) {
	assert.True(t, SelectionNone.IsValid())
	assert.True(t, SelectionExplicit.IsValid())
	assert.True(t, SelectionAllFiltered.IsValid())
	assert.False(t, SelectionMode("PARTIAL").IsValid())
}
