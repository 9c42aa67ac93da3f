package planner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/planner"
	"github.com/queryline/queryline/queryline/query"
)

func ids(entities []*entity.Entity) []int64 {
	out := make([]int64, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}

func TestSortByPriorityPosition(t *testing.T) {
	ref := testRef()
	entities := []*entity.Entity{
		issue(1, map[string]any{"priority_id": int64(5)}), // Normal, position 2
		issue(2, map[string]any{"priority_id": int64(6)}), // High, position 3
		issue(3, map[string]any{"priority_id": int64(4)}), // Low, position 1
	}

	plan := planner.BuildPlan([]query.SortCriterion{{Field: "priority"}}, "", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{3, 1, 2}, ids(entities))

	plan = planner.BuildPlan([]query.SortCriterion{{Field: "priority", Descending: true}}, "", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{2, 1, 3}, ids(entities))
}

func TestSortTiesBreakByID(t *testing.T) {
	ref := testRef()
	entities := []*entity.Entity{
		issue(4, map[string]any{"priority_id": int64(5)}),
		issue(2, map[string]any{"priority_id": int64(5)}),
		issue(3, map[string]any{"priority_id": int64(5)}),
	}
	plan := planner.BuildPlan([]query.SortCriterion{{Field: "priority", Descending: true}}, "", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{2, 3, 4}, ids(entities))
}

func TestSortNullsAlwaysLast(t *testing.T) {
	ref := testRef()
	entities := []*entity.Entity{
		issue(1, nil), // no assignee
		issue(2, map[string]any{"assigned_to_id": int64(2)}), // John Smith
		issue(3, map[string]any{"assigned_to_id": int64(3)}), // Dave Lopper
	}

	plan := planner.BuildPlan([]query.SortCriterion{{Field: "assigned_to"}}, "", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{3, 2, 1}, ids(entities))

	plan = planner.BuildPlan([]query.SortCriterion{{Field: "assigned_to", Descending: true}}, "", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{2, 3, 1}, ids(entities))
}

func TestSortGroupByOrdersFirst(t *testing.T) {
	ref := testRef()
	entities := []*entity.Entity{
		issue(1, map[string]any{"priority_id": int64(4), "status_id": int64(2)}),
		issue(2, map[string]any{"priority_id": int64(6), "status_id": int64(1)}),
		issue(3, map[string]any{"priority_id": int64(6), "status_id": int64(2)}),
		issue(4, map[string]any{"priority_id": int64(4), "status_id": int64(1)}),
	}

	// priority groups in their natural descending order, statuses ascending within
	plan := planner.BuildPlan([]query.SortCriterion{{Field: "status"}}, "priority", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{2, 3, 4, 1}, ids(entities))
}

func TestSortFixedVersionByDateThenName(t *testing.T) {
	ref := testRef()
	early := time.Date(2011, 3, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2011, 9, 1, 0, 0, 0, 0, time.UTC)
	ref.Versions = []entity.Version{
		{ID: 3, Name: "2.0", ProjectID: 1, EffectiveDate: &late},
		{ID: 4, Name: "1.0", ProjectID: 1, EffectiveDate: &early},
		{ID: 5, Name: "0.9", ProjectID: 1}, // no date sorts before dated ones
	}

	entities := []*entity.Entity{
		issue(1, map[string]any{"fixed_version_id": int64(3)}),
		issue(2, map[string]any{"fixed_version_id": int64(4)}),
		issue(3, map[string]any{"fixed_version_id": int64(5)}),
	}
	plan := planner.BuildPlan([]query.SortCriterion{{Field: "fixed_version"}}, "", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{3, 2, 1}, ids(entities))
}

func TestSortPlainFields(t *testing.T) {
	ref := testRef()
	entities := []*entity.Entity{
		issue(1, map[string]any{"subject": "zebra", "updated_on": time.Date(2011, 10, 1, 10, 0, 0, 0, time.UTC)}),
		issue(2, map[string]any{"subject": "Apple", "updated_on": time.Date(2011, 10, 2, 10, 0, 0, 0, time.UTC)}),
	}

	plan := planner.BuildPlan([]query.SortCriterion{{Field: "subject"}}, "", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{2, 1}, ids(entities))

	plan = planner.BuildPlan([]query.SortCriterion{{Field: "updated_on", Descending: true}}, "", ref)
	plan.Sort(entities)
	assert.Equal(t, []int64{2, 1}, ids(entities))
}

func TestSortCustomFieldNumeric(t *testing.T) {
	ref := testRef()
	a := issue(1, nil)
	a.CustomValues = map[int64][]string{2: {"10"}}
	b := issue(2, nil)
	b.CustomValues = map[int64][]string{2: {"9.5"}}

	entities := []*entity.Entity{a, b}
	plan := planner.BuildPlan([]query.SortCriterion{{Field: "cf_2"}}, "", ref)
	plan.Sort(entities)

	// numeric formats compare by value, not lexically
	assert.Equal(t, []int64{2, 1}, ids(entities))
}

func TestGroupKeyFunc(t *testing.T) {
	ref := testRef()

	key := planner.GroupKeyFunc("status", ref)
	v, ok := key(issue(1, map[string]any{"status_id": int64(2)}))
	require.True(t, ok)
	assert.Equal(t, int64(2), v)

	_, ok = key(issue(2, map[string]any{"status_id": nil}))
	assert.False(t, ok)

	cfKey := planner.GroupKeyFunc("cf_1", ref)
	e := issue(3, nil)
	e.CustomValues = map[int64][]string{1: {"high"}}
	v, ok = cfKey(e)
	require.True(t, ok)
	assert.Equal(t, "high", v)

	_, ok = cfKey(issue(4, nil))
	assert.False(t, ok)
}
