package queryline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryline/queryline/queryline"
	"github.com/queryline/queryline/queryline/query"
)

func columnNames(cols []queryline.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func TestResolveColumnsDefaults(t *testing.T) {
	ref := testRef()
	available := queryline.AvailableColumns(ref, query.Scope{Kind: query.ScopeGlobal})

	cols := queryline.ResolveColumns(nil, available, query.Scope{Kind: query.ScopeGlobal}, nil)
	assert.Equal(t, []string{"id", "project", "tracker", "status", "priority", "subject", "assigned_to", "updated_on"},
		columnNames(cols))
	assert.Equal(t, "#", cols[0].Caption)

	// a project scope drops the implicit project column
	scope := query.Scope{Kind: query.ScopeProject, ProjectID: 1}
	available = queryline.AvailableColumns(ref, scope)
	cols = queryline.ResolveColumns(nil, available, scope, nil)
	assert.Equal(t, []string{"id", "tracker", "status", "priority", "subject", "assigned_to", "updated_on"},
		columnNames(cols))
}

func TestResolveColumnsExplicit(t *testing.T) {
	ref := testRef()
	scope := query.Scope{Kind: query.ScopeGlobal}
	available := queryline.AvailableColumns(ref, scope)

	cols := queryline.ResolveColumns([]string{"subject", "status", "subject", "bogus"}, available, scope, nil)
	assert.Equal(t, []string{"id", "subject", "status"}, columnNames(cols))
}

func TestResolveColumnsPermissionGate(t *testing.T) {
	ref := testRef()
	scope := query.Scope{Kind: query.ScopeGlobal}
	available := queryline.AvailableColumns(ref, scope)

	cols := queryline.ResolveColumns([]string{"subject", "spent_hours"}, available, scope, nil)
	assert.Equal(t, []string{"id", "subject"}, columnNames(cols))

	perms := queryline.Permissions{"view_time_entries": true}
	cols = queryline.ResolveColumns([]string{"subject", "spent_hours"}, available, scope, perms)
	assert.Equal(t, []string{"id", "subject", "spent_hours"}, columnNames(cols))
}

func TestResolveColumnsAllInline(t *testing.T) {
	ref := testRef()
	scope := query.Scope{Kind: query.ScopeGlobal}
	available := queryline.AvailableColumns(ref, scope)
	perms := queryline.Permissions{"view_time_entries": true}

	cols := queryline.ResolveColumns([]string{queryline.AllInlineToken}, available, scope, perms)
	names := columnNames(cols)
	assert.Contains(t, names, "cf_1")
	assert.Contains(t, names, "estimated_hours")
	assert.NotContains(t, names, "description")
	assert.NotContains(t, names, "last_notes")
	assert.Equal(t, "id", names[0])
}

func TestAvailableColumnsCustomFields(t *testing.T) {
	ref := testRef()
	cols := queryline.AvailableColumns(ref, query.Scope{Kind: query.ScopeGlobal})

	byName := map[string]queryline.Column{}
	for _, c := range cols {
		byName[c.Name] = c
	}

	severity, ok := byName["cf_1"]
	require.True(t, ok)
	assert.Equal(t, "Severity", severity.Caption)
	assert.True(t, severity.Groupable)
	assert.False(t, severity.Summable)

	effort, ok := byName["cf_2"]
	require.True(t, ok)
	assert.True(t, effort.Summable)
	assert.False(t, effort.Groupable)
}

func TestAvailableColumnsScopesCustomFields(t *testing.T) {
	ref := testRef()
	ref.CustomFields[0].ForAll = false
	ref.CustomFields[0].ProjectIDs = []int64{2}

	cols := queryline.AvailableColumns(ref, query.Scope{Kind: query.ScopeProject, ProjectID: 1})
	assert.NotContains(t, columnNames(cols), "cf_1")
	assert.Contains(t, columnNames(cols), "cf_2")
}

func TestGroupableColumn(t *testing.T) {
	ref := testRef()
	available := queryline.AvailableColumns(ref, query.Scope{Kind: query.ScopeGlobal})

	c, ok := queryline.GroupableColumn("status", available)
	require.True(t, ok)
	assert.Equal(t, "status", c.Name)

	_, ok = queryline.GroupableColumn("subject", available)
	assert.False(t, ok)

	_, ok = queryline.GroupableColumn("bogus", available)
	assert.False(t, ok)
}

func TestSummableColumns(t *testing.T) {
	ref := testRef()
	available := queryline.AvailableColumns(ref, query.Scope{Kind: query.ScopeGlobal})

	cols := queryline.SummableColumns([]string{"estimated_hours", "cf_2", "subject"}, available, nil)
	assert.Equal(t, []string{"estimated_hours", "cf_2"}, columnNames(cols))

	// spent time totals are permission gated
	cols = queryline.SummableColumns([]string{"spent_hours"}, available, nil)
	assert.Empty(t, cols)
	cols = queryline.SummableColumns([]string{"spent_hours"}, available, queryline.Permissions{"view_time_entries": true})
	assert.Equal(t, []string{"spent_hours"}, columnNames(cols))
}
