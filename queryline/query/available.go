package query

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/field"
)

// MeToken is the placeholder value substituted with the current user id (and
// group ids for assignee filters) at compile time.
const MeToken = "me"

// ValueOption is one selectable value of an enumerated filter.
type ValueOption struct {
	Label string
	Value string
}

// FilterDef describes one available filter: its field type, display order and,
// for enumerated types, the selectable values.
type FilterDef struct {
	Field         string
	Type          field.Type
	Order         int
	Name          string // display name; empty means derive from Field
	Values        []ValueOption
	CustomFieldID int64
	Multi         bool // multi-valued custom field
}

// Available is the ordered registry of filters a query may legally use.
type Available struct {
	defs  map[string]FilterDef
	order []string
}

func (a *Available) add(def FilterDef) {
	if a.defs == nil {
		a.defs = map[string]FilterDef{}
	}
	if _, dup := a.defs[def.Field]; !dup {
		a.order = append(a.order, def.Field)
	}
	a.defs[def.Field] = def
}

// Has reports whether the field is an available filter.
func (a *Available) Has(fieldName string) bool {
	_, ok := a.defs[fieldName]
	return ok
}

// Get returns the definition for the field.
func (a *Available) Get(fieldName string) (FilterDef, bool) {
	def, ok := a.defs[fieldName]
	return def, ok
}

// Ordered returns all definitions sorted by display order, then field name.
func (a *Available) Ordered() []FilterDef {
	defs := make([]FilterDef, 0, len(a.order))
	for _, name := range a.order {
		defs = append(defs, a.defs[name])
	}
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Order != defs[j].Order {
			return defs[i].Order < defs[j].Order
		}
		return defs[i].Field < defs[j].Field
	})
	return defs
}

// BuildAvailable assembles the filter registry for a scope and caller,
// including custom fields applicable within the scope.
func BuildAvailable(ref *entity.RefData, scope Scope, current *entity.User) *Available {
	a := &Available{}

	statusValues := make([]ValueOption, 0, len(ref.Statuses))
	for _, s := range orderedStatuses(ref) {
		statusValues = append(statusValues, ValueOption{Label: s.Name, Value: strconv.FormatInt(s.ID, 10)})
	}
	a.add(FilterDef{Field: "status_id", Type: field.Status, Order: 1, Values: statusValues})

	trackerValues := make([]ValueOption, 0, len(ref.Trackers))
	for _, t := range orderedTrackers(ref) {
		trackerValues = append(trackerValues, ValueOption{Label: t.Name, Value: strconv.FormatInt(t.ID, 10)})
	}
	a.add(FilterDef{Field: "tracker_id", Type: field.List, Order: 2, Values: trackerValues})

	priorityValues := make([]ValueOption, 0, len(ref.Priorities))
	for _, p := range ref.Priorities {
		priorityValues = append(priorityValues, ValueOption{Label: p.Name, Value: strconv.FormatInt(p.ID, 10)})
	}
	a.add(FilterDef{Field: "priority_id", Type: field.List, Order: 3, Values: priorityValues})

	userValues := principalValues(ref, current)
	if len(userValues) > 0 {
		a.add(FilterDef{Field: "assigned_to_id", Type: field.ListOptional, Order: 4, Values: userValues})
		a.add(FilterDef{Field: "author_id", Type: field.List, Order: 5, Values: userValues})
	}

	if len(ref.Groups) > 0 {
		groupValues := make([]ValueOption, 0, len(ref.Groups))
		for _, g := range ref.Groups {
			groupValues = append(groupValues, ValueOption{Label: g.Name, Value: strconv.FormatInt(g.ID, 10)})
		}
		a.add(FilterDef{Field: "member_of_group", Type: field.ListOptional, Order: 6, Values: groupValues})
	}

	var roleValues []ValueOption
	for _, r := range ref.Roles {
		if r.Givable {
			roleValues = append(roleValues, ValueOption{Label: r.Name, Value: strconv.FormatInt(r.ID, 10)})
		}
	}
	if len(roleValues) > 0 {
		a.add(FilterDef{Field: "assigned_to_role", Type: field.ListOptional, Order: 7, Values: roleValues})
	}

	a.add(FilterDef{Field: "subject", Type: field.Text, Order: 8})
	a.add(FilterDef{Field: "created_on", Type: field.DateTime, Order: 9})
	a.add(FilterDef{Field: "updated_on", Type: field.DateTime, Order: 10})
	a.add(FilterDef{Field: "start_date", Type: field.Date, Order: 11})
	a.add(FilterDef{Field: "due_date", Type: field.Date, Order: 12})
	a.add(FilterDef{Field: "estimated_hours", Type: field.Float, Order: 13})
	a.add(FilterDef{Field: "done_ratio", Type: field.Integer, Order: 14})

	if current.Logged() {
		a.add(FilterDef{Field: "watcher_id", Type: field.List, Order: 15,
			Values: []ValueOption{{Label: "me", Value: MeToken}}})
	}

	if scope.Kind == ScopeGlobal {
		var projectValues []ValueOption
		for _, p := range ref.Projects {
			if p.Status == entity.ProjectActive {
				projectValues = append(projectValues, ValueOption{Label: p.Name, Value: strconv.FormatInt(p.ID, 10)})
			}
		}
		if len(projectValues) > 0 {
			a.add(FilterDef{Field: "project_id", Type: field.List, Order: 1, Values: projectValues})
		}
		a.add(FilterDef{Field: "project.status", Type: field.List, Order: 16, Values: []ValueOption{
			{Label: "active", Value: strconv.FormatInt(entity.ProjectActive, 10)},
			{Label: "closed", Value: strconv.FormatInt(entity.ProjectClosed, 10)},
		}})
	} else {
		var categoryValues []ValueOption
		for _, c := range ref.Categories {
			if c.ProjectID == scope.ProjectID {
				categoryValues = append(categoryValues, ValueOption{Label: c.Name, Value: strconv.FormatInt(c.ID, 10)})
			}
		}
		if len(categoryValues) > 0 {
			a.add(FilterDef{Field: "category_id", Type: field.ListOptional, Order: 6, Values: categoryValues})
		}

		var versionValues []ValueOption
		for _, v := range ref.Versions {
			if v.ProjectID == scope.ProjectID || v.Sharing == "system" {
				versionValues = append(versionValues, ValueOption{Label: v.Name, Value: strconv.FormatInt(v.ID, 10)})
			}
		}
		if len(versionValues) > 0 {
			a.add(FilterDef{Field: "fixed_version_id", Type: field.VersionRef, Order: 7, Values: versionValues})
		}

		if subs := ref.ProjectDescendants(scope.ProjectID); len(subs) > 0 {
			var subValues []ValueOption
			for _, id := range subs {
				if p, ok := ref.ProjectByID(id); ok && p.Status == entity.ProjectActive {
					subValues = append(subValues, ValueOption{Label: p.Name, Value: strconv.FormatInt(id, 10)})
				}
			}
			if len(subValues) > 0 {
				a.add(FilterDef{Field: "subproject_id", Type: field.Subprojects, Order: 13, Values: subValues})
			}
		}
	}

	for _, cf := range ref.CustomFields {
		if !cf.Filterable {
			continue
		}
		if scope.Kind != ScopeGlobal && !cf.AppliesToProject(scope.ProjectID) {
			continue
		}
		if scope.Kind == ScopeGlobal && !cf.ForAll {
			continue
		}
		def, ok := customFieldFilter(cf, scope)
		if ok {
			a.add(def)
		}
	}

	return a
}

// CustomFieldName returns the conventional filter/column name for a custom
// field id.
func CustomFieldName(id int64) string {
	return fmt.Sprintf("cf_%d", id)
}

func customFieldFilter(cf entity.CustomField, scope Scope) (FilterDef, bool) {
	def := FilterDef{
		Field:         CustomFieldName(cf.ID),
		Type:          cf.Format,
		Order:         20,
		Name:          cf.Name,
		CustomFieldID: cf.ID,
		Multi:         cf.Multi,
	}
	switch cf.Format {
	case field.List:
		def.Type = field.ListOptional
		for _, v := range cf.PossibleValues {
			def.Values = append(def.Values, ValueOption{Label: v, Value: v})
		}
	case field.Bool:
		def.Values = []ValueOption{{Label: "yes", Value: "1"}, {Label: "no", Value: "0"}}
	case field.UserRef, field.VersionRef:
		// user/version custom fields only resolve within a project scope
		if scope.Kind == ScopeGlobal {
			return FilterDef{}, false
		}
		def.Type = field.ListOptional
		for _, v := range cf.PossibleValues {
			def.Values = append(def.Values, ValueOption{Label: v, Value: v})
		}
	case field.Text, field.Date, field.Integer, field.Float, field.String:
		// operator vocabulary of the base type
	default:
		def.Type = field.String
	}
	return def, true
}

func principalValues(ref *entity.RefData, current *entity.User) []ValueOption {
	var out []ValueOption
	if current.Logged() {
		out = append(out, ValueOption{Label: "<< me >>", Value: MeToken})
	}
	users := make([]entity.User, len(ref.Users))
	copy(users, ref.Users)
	sort.SliceStable(users, func(i, j int) bool { return users[i].Name() < users[j].Name() })
	for _, u := range users {
		out = append(out, ValueOption{Label: u.Name(), Value: strconv.FormatInt(u.ID, 10)})
	}
	return out
}

func orderedStatuses(ref *entity.RefData) []entity.Status {
	out := make([]entity.Status, len(ref.Statuses))
	copy(out, ref.Statuses)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func orderedTrackers(ref *entity.RefData) []entity.Tracker {
	out := make([]entity.Tracker, len(ref.Trackers))
	copy(out, ref.Trackers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
