package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/planner"
)

// Memory is an in-process entity source. Fetch evaluates the predicate
// directly, so it returns exactly the matching set. Useful for tests and
// small data sets that fit in RAM.
type Memory struct {
	ref *entity.RefData

	mu       sync.RWMutex
	entities map[int64]*entity.Entity
}

func NewMemory(ref *entity.RefData) *Memory {
	return &Memory{ref: ref, entities: make(map[int64]*entity.Entity)}
}

func (m *Memory) Put(entities ...*entity.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entities {
		m.entities[e.ID] = e
	}
}

func (m *Memory) Delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities, id)
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

func (m *Memory) Fetch(_ context.Context, pred planner.Node) ([]*entity.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*entity.Entity
	for _, e := range m.entities {
		if planner.Eval(pred, e, m.ref) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
