package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryline/queryline/queryline/field"
	"github.com/queryline/queryline/queryline/query"
)

func TestBuildAvailableGlobal(t *testing.T) {
	av := globalAvailable()

	for _, f := range []string{
		"status_id", "tracker_id", "priority_id", "assigned_to_id", "author_id",
		"member_of_group", "assigned_to_role", "subject", "created_on",
		"updated_on", "start_date", "due_date", "estimated_hours", "done_ratio",
		"watcher_id", "project_id", "project.status", "cf_1", "cf_2",
	} {
		assert.True(t, av.Has(f), f)
	}
	// project-scoped filters are absent globally
	for _, f := range []string{"category_id", "fixed_version_id", "subproject_id"} {
		assert.False(t, av.Has(f), f)
	}
}

func TestBuildAvailableProject(t *testing.T) {
	av := projectAvailable()

	assert.False(t, av.Has("project_id"))
	assert.False(t, av.Has("project.status"))
	assert.True(t, av.Has("category_id"))
	assert.True(t, av.Has("fixed_version_id"))
	assert.True(t, av.Has("subproject_id"))

	def, ok := av.Get("subproject_id")
	require.True(t, ok)
	assert.Equal(t, field.Subprojects, def.Type)
	require.Len(t, def.Values, 1)
	assert.Equal(t, "3", def.Values[0].Value)
}

func TestBuildAvailableAnonymous(t *testing.T) {
	av := query.BuildAvailable(testRef(), query.Scope{Kind: query.ScopeGlobal}, nil)
	assert.False(t, av.Has("watcher_id"))

	// the me token is only offered to logged-in users
	def, ok := av.Get("assigned_to_id")
	require.True(t, ok)
	for _, v := range def.Values {
		assert.NotEqual(t, query.MeToken, v.Value)
	}
}

func TestBuildAvailableMeToken(t *testing.T) {
	def, ok := projectAvailable().Get("assigned_to_id")
	require.True(t, ok)
	require.NotEmpty(t, def.Values)
	assert.Equal(t, query.MeToken, def.Values[0].Value)
	assert.Equal(t, field.ListOptional, def.Type)
}

func TestBuildAvailableCustomFields(t *testing.T) {
	av := projectAvailable()

	sev, ok := av.Get("cf_1")
	require.True(t, ok)
	assert.Equal(t, field.ListOptional, sev.Type)
	assert.Equal(t, int64(1), sev.CustomFieldID)
	require.Len(t, sev.Values, 3)
	assert.Equal(t, "low", sev.Values[0].Value)

	effort, ok := av.Get("cf_2")
	require.True(t, ok)
	assert.Equal(t, field.Float, effort.Type)
}

func TestOrderedStable(t *testing.T) {
	av := projectAvailable()
	defs := av.Ordered()
	require.NotEmpty(t, defs)
	assert.Equal(t, "status_id", defs[0].Field)
	for i := 1; i < len(defs); i++ {
		if defs[i-1].Order == defs[i].Order {
			assert.Less(t, defs[i-1].Field, defs[i].Field)
		} else {
			assert.Less(t, defs[i-1].Order, defs[i].Order)
		}
	}
}
