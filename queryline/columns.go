package queryline

import (
	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/field"
	"github.com/queryline/queryline/queryline/query"
)

// AllInlineToken expands to every inline-rendered available column.
const AllInlineToken = "all_inline"

// Permissions is the caller's permission set, supplied by the authorization
// collaborator.
type Permissions map[string]bool

func (p Permissions) Allowed(perm string) bool {
	return perm == "" || p[perm]
}

// Column describes one displayable column. Block columns render as full-width
// rows downstream and are excluded from the inline set.
type Column struct {
	Name          string
	Caption       string
	Inline        bool
	Groupable     bool
	Summable      bool
	Permission    string // required permission, empty means none
	CustomFieldID int64
}

// DefaultColumnNames is the configured default projection.
var DefaultColumnNames = []string{"tracker", "status", "priority", "subject", "assigned_to", "updated_on"}

// AvailableColumns returns every column the caller could select, including
// custom field columns applicable in scope.
func AvailableColumns(ref *entity.RefData, scope query.Scope) []Column {
	cols := []Column{
		{Name: "project", Caption: "Project", Inline: true, Groupable: true},
		{Name: "tracker", Caption: "Tracker", Inline: true, Groupable: true},
		{Name: "parent", Caption: "Parent issue", Inline: true},
		{Name: "status", Caption: "Status", Inline: true, Groupable: true},
		{Name: "priority", Caption: "Priority", Inline: true, Groupable: true},
		{Name: "subject", Caption: "Subject", Inline: true},
		{Name: "author", Caption: "Author", Inline: true, Groupable: true},
		{Name: "assigned_to", Caption: "Assignee", Inline: true, Groupable: true},
		{Name: "updated_on", Caption: "Updated", Inline: true},
		{Name: "category", Caption: "Category", Inline: true, Groupable: true},
		{Name: "fixed_version", Caption: "Target version", Inline: true, Groupable: true},
		{Name: "start_date", Caption: "Start date", Inline: true},
		{Name: "due_date", Caption: "Due date", Inline: true},
		{Name: "estimated_hours", Caption: "Estimated time", Inline: true, Summable: true},
		{Name: "spent_hours", Caption: "Spent time", Inline: true, Summable: true, Permission: "view_time_entries"},
		{Name: "total_spent_hours", Caption: "Total spent time", Inline: true, Permission: "view_time_entries"},
		{Name: "total_estimated_hours", Caption: "Total estimated time", Inline: true},
		{Name: "done_ratio", Caption: "% Done", Inline: true, Groupable: true},
		{Name: "created_on", Caption: "Created", Inline: true},
		{Name: "description", Caption: "Description"},
		{Name: "last_notes", Caption: "Last notes"},
	}
	for _, cf := range ref.CustomFields {
		if scope.Kind != query.ScopeGlobal && !cf.AppliesToProject(scope.ProjectID) {
			continue
		}
		col := Column{
			Name:          query.CustomFieldName(cf.ID),
			Caption:       cf.Name,
			Inline:        cf.Format != field.Text,
			CustomFieldID: cf.ID,
		}
		switch cf.Format {
		case field.List, field.Date, field.Bool, field.Integer:
			col.Groupable = true
		}
		if cf.Summable && (cf.Format == field.Integer || cf.Format == field.Float) {
			col.Summable = true
		}
		cols = append(cols, col)
	}
	return cols
}

// ResolveColumns turns the requested column names into the final ordered
// projection. With no request it falls back to the defaults, adding a project
// column when no project scope is active. The id column is implicitly
// prepended and never counted against the user-visible list; permission-gated
// columns are silently dropped.
func ResolveColumns(requested []string, available []Column, scope query.Scope, perms Permissions) []Column {
	byName := make(map[string]Column, len(available))
	for _, c := range available {
		byName[c.Name] = c
	}

	names := requested
	if len(names) == 0 {
		names = DefaultColumnNames
		if scope.Kind == query.ScopeGlobal {
			names = append([]string{"project"}, names...)
		}
	}

	out := []Column{{Name: "id", Caption: "#", Inline: true}}
	seen := map[string]bool{"id": true}
	add := func(c Column) {
		if seen[c.Name] || !perms.Allowed(c.Permission) {
			return
		}
		seen[c.Name] = true
		out = append(out, c)
	}

	for _, name := range names {
		if name == AllInlineToken {
			for _, c := range available {
				if c.Inline {
					add(c)
				}
			}
			continue
		}
		if c, ok := byName[name]; ok {
			add(c)
		}
	}
	return out
}

// GroupableColumn returns the column for a group-by field when it supports
// grouping.
func GroupableColumn(groupBy string, available []Column) (Column, bool) {
	for _, c := range available {
		if c.Name == groupBy && c.Groupable {
			return c, true
		}
	}
	return Column{}, false
}

// SummableColumns filters the requested total fields down to columns declared
// summable and permitted; anything else is a configuration mistake, not a
// user error, and is dropped.
func SummableColumns(totals []string, available []Column, perms Permissions) []Column {
	var out []Column
	for _, name := range totals {
		for _, c := range available {
			if c.Name == name && c.Summable && perms.Allowed(c.Permission) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
