package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/planner"
)

func TestMemoryFetch(t *testing.T) {
	ref := &entity.RefData{}
	m := NewMemory(ref)
	m.Put(
		&entity.Entity{ID: 3, Values: map[string]any{"status_id": int64(1)}},
		&entity.Entity{ID: 1, Values: map[string]any{"status_id": int64(1)}},
		&entity.Entity{ID: 2, Values: map[string]any{"status_id": int64(5)}},
	)
	require.Equal(t, 3, m.Len())

	out, err := m.Fetch(context.Background(), planner.In{Ref: planner.Ref{Field: "status_id"}, Values: []string{"1"}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	// results come back in id order
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)

	m.Delete(1)
	assert.Equal(t, 2, m.Len())
	out, err = m.Fetch(context.Background(), planner.True{})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
