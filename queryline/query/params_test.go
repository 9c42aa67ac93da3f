package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryline/queryline/queryline/field"
	"github.com/queryline/queryline/queryline/query"
)

func TestBuildSpecFreshDefaults(t *testing.T) {
	av := projectAvailable()
	scope := query.Scope{Kind: query.ScopeProject, ProjectID: 1}

	spec, err := query.BuildSpec(query.Params{}, av, scope, nil)
	require.NoError(t, err)
	require.Len(t, spec.Filters, 1)
	assert.Equal(t, "status_id", spec.Filters[0].Field)
	assert.Equal(t, field.OpOpen, spec.Filters[0].Operator)
}

func TestBuildSpecShortForm(t *testing.T) {
	av := projectAvailable()
	scope := query.Scope{Kind: query.ScopeProject, ProjectID: 1}
	p := query.Params{
		"set_filter": {"1"},
		"status_id":  {"c"},
		"due_date":   {">t-7"},
		"sort":       {"priority:desc,id"},
		"group_by":   {"tracker"},
		"c[]":        {"subject", "status", "due_date"},
		"t[]":        {"estimated_hours"},
	}
	spec, err := query.BuildSpec(p, av, scope, nil)
	require.NoError(t, err)

	f, ok := spec.Filter("status_id")
	require.True(t, ok)
	assert.Equal(t, field.OpClosed, f.Operator)
	f, ok = spec.Filter("due_date")
	require.True(t, ok)
	assert.Equal(t, field.OpAgoLessThan, f.Operator)
	assert.Equal(t, []string{"7"}, f.Values)

	require.Len(t, spec.Sort, 2)
	assert.Equal(t, query.SortCriterion{Field: "priority", Descending: true}, spec.Sort[0])
	assert.Equal(t, query.SortCriterion{Field: "id"}, spec.Sort[1])
	assert.Equal(t, "tracker", spec.GroupBy)
	assert.Equal(t, []string{"subject", "status", "due_date"}, spec.Columns)
	assert.Equal(t, []string{"estimated_hours"}, spec.Totals)
}

func TestBuildSpecExplicitForm(t *testing.T) {
	av := projectAvailable()
	scope := query.Scope{Kind: query.ScopeProject, ProjectID: 1}
	p := query.Params{
		"set_filter":          {"1"},
		"f[]":                 {"status_id", "assigned_to_id"},
		"op[status_id]":       {"="},
		"v[status_id][]":      {"1", "2"},
		"op[assigned_to_id]":  {"="},
		"v[assigned_to_id][]": {"me"},
	}
	spec, err := query.BuildSpec(p, av, scope, nil)
	require.NoError(t, err)

	f, ok := spec.Filter("status_id")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, f.Values)
	f, ok = spec.Filter("assigned_to_id")
	require.True(t, ok)
	assert.Equal(t, []string{"me"}, f.Values)
}

func TestBuildSpecSetFilterClearsWithoutDefault(t *testing.T) {
	av := projectAvailable()
	scope := query.Scope{Kind: query.ScopeProject, ProjectID: 1}
	// set_filter=1 with no filters means "no filters", not the default
	spec, err := query.BuildSpec(query.Params{"set_filter": {"1"}}, av, scope, nil)
	require.NoError(t, err)
	assert.Empty(t, spec.Filters)
}

func TestBuildSpecRefinesBase(t *testing.T) {
	av := projectAvailable()
	scope := query.Scope{Kind: query.ScopeProject, ProjectID: 1}
	base := &query.Spec{
		Scope: scope,
		Filters: []query.Filter{
			{Field: "status_id", Operator: field.OpOpen, Values: []string{""}},
		},
		GroupBy: "tracker",
	}

	// without set_filter the base filters survive; sort overrides
	spec, err := query.BuildSpec(query.Params{"sort": {"id:desc"}}, av, scope, base)
	require.NoError(t, err)
	assert.True(t, spec.HasFilter("status_id"))
	assert.Equal(t, "tracker", spec.GroupBy)
	require.Len(t, spec.Sort, 1)
	assert.True(t, spec.Sort[0].Descending)

	// base is not mutated
	assert.Empty(t, base.Sort)

	// with set_filter the filters are rebuilt from scratch
	spec, err = query.BuildSpec(query.Params{
		"set_filter": {"1"},
		"tracker_id": {"1"},
	}, av, scope, base)
	require.NoError(t, err)
	assert.False(t, spec.HasFilter("status_id"))
	assert.True(t, spec.HasFilter("tracker_id"))
}

func TestSortParamRoundTrip(t *testing.T) {
	criteria := query.ParseSortParam("priority:desc,assigned_to,id:asc")
	require.Len(t, criteria, 3)
	assert.Equal(t, query.SortCriterion{Field: "priority", Descending: true}, criteria[0])
	assert.Equal(t, query.SortCriterion{Field: "assigned_to"}, criteria[1])
	assert.Equal(t, query.SortCriterion{Field: "id"}, criteria[2])

	assert.Equal(t, "priority:desc,assigned_to,id", query.FormatSortParam(criteria))
}

func TestSetSortClampsToThree(t *testing.T) {
	spec := &query.Spec{}
	spec.SetSort(query.ParseSortParam("a,b,,c:desc,d"))
	require.Len(t, spec.Sort, query.MaxSortCriteria)
	assert.Equal(t, "a", spec.Sort[0].Field)
	assert.Equal(t, "b", spec.Sort[1].Field)
	assert.Equal(t, "c", spec.Sort[2].Field)
}

func TestSessionRoundTrip(t *testing.T) {
	av := projectAvailable()
	scope := query.Scope{Kind: query.ScopeProject, ProjectID: 1}
	p := query.Params{
		"set_filter": {"1"},
		"status_id":  {"!5"},
		"due_date":   {"w"},
		"sort":       {"due_date:desc,id"},
		"group_by":   {"assigned_to"},
		"c[]":        {"subject", "due_date"},
		"t[]":        {"estimated_hours"},
	}
	spec, err := query.BuildSpec(p, av, scope, nil)
	require.NoError(t, err)

	b, err := query.EncodeSession(spec)
	require.NoError(t, err)
	restored, err := query.DecodeSession(b)
	require.NoError(t, err)
	assert.Equal(t, spec, restored)

	// a restored spec refined with no params is unchanged
	again, err := query.BuildSpec(query.Params{}, av, scope, restored)
	require.NoError(t, err)
	assert.Equal(t, spec.Filters, again.Filters)
	assert.Equal(t, spec.Sort, again.Sort)
	assert.Equal(t, spec.GroupBy, again.GroupBy)
	assert.Equal(t, spec.Columns, again.Columns)
	assert.Equal(t, spec.Totals, again.Totals)
}
