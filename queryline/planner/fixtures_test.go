package planner_test

import (
	"time"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/field"
	"github.com/queryline/queryline/queryline/planner"
	"github.com/queryline/queryline/queryline/query"
)

// testRef is a compact project tree: 1 (public) with child 3, and private 2.
func testRef() *entity.RefData {
	return &entity.RefData{
		Statuses: []entity.Status{
			{ID: 1, Name: "New", Position: 1},
			{ID: 2, Name: "In Progress", Position: 2},
			{ID: 5, Name: "Closed", Position: 3, Closed: true},
		},
		Trackers: []entity.Tracker{
			{ID: 1, Name: "Bug", Position: 1},
			{ID: 2, Name: "Feature", Position: 2},
		},
		Priorities: []entity.Priority{
			{ID: 4, Name: "Low", Position: 1},
			{ID: 5, Name: "Normal", Position: 2},
			{ID: 6, Name: "High", Position: 3},
		},
		Categories: []entity.Category{
			{ID: 1, Name: "Printing", ProjectID: 1},
		},
		Versions: []entity.Version{
			{ID: 3, Name: "2.0", ProjectID: 1},
		},
		Users: []entity.User{
			{ID: 2, Login: "jsmith", FirstName: "John", LastName: "Smith"},
			{ID: 3, Login: "dlopper", FirstName: "Dave", LastName: "Lopper", GroupIDs: []int64{10}},
			{ID: 1, Login: "admin", FirstName: "Red", LastName: "Admin", Admin: true},
		},
		Groups: []entity.Group{
			{ID: 10, Name: "Team A", UserIDs: []int64{3}},
		},
		Roles: []entity.Role{
			{ID: 1, Name: "Manager", Givable: true},
			{ID: 2, Name: "Developer", Givable: true},
		},
		Projects: []entity.Project{
			{ID: 1, Name: "eCookbook", Status: entity.ProjectActive, Public: true},
			{ID: 2, Name: "OnlineStore", Status: entity.ProjectActive},
			{ID: 3, Name: "Subproject", ParentID: 1, Status: entity.ProjectActive, Public: true},
		},
		Memberships: []entity.Membership{
			{ProjectID: 2, UserID: 2, RoleIDs: []int64{1}},
			{ProjectID: 1, UserID: 3, RoleIDs: []int64{2}},
		},
		CustomFields: []entity.CustomField{
			{ID: 1, Name: "Severity", Format: field.List, Filterable: true, ForAll: true,
				PossibleValues: []string{"low", "mid", "high"}},
			{ID: 2, Name: "Effort", Format: field.Float, Filterable: true, Summable: true, ForAll: true},
		},
		FirstDayOfWeek: time.Monday,
	}
}

func member() *entity.User {
	ref := testRef()
	u, _ := ref.UserByID(2)
	return &u
}

func grouped() *entity.User {
	ref := testRef()
	u, _ := ref.UserByID(3)
	return &u
}

// testToday anchors relative date windows to a fixed Wednesday.
var testToday = time.Date(2011, 10, 12, 0, 0, 0, 0, time.UTC)

func compileCtx(ref *entity.RefData, u *entity.User) *planner.Context {
	return &planner.Context{
		Today:     testToday,
		WeekStart: ref.FirstDayOfWeek,
		User:      u,
		Ref:       ref,
	}
}

func globalAvailable(ref *entity.RefData, u *entity.User) *query.Available {
	return query.BuildAvailable(ref, query.Scope{Kind: query.ScopeGlobal}, u)
}

func projectAvailable(ref *entity.RefData, u *entity.User) *query.Available {
	return query.BuildAvailable(ref, query.Scope{Kind: query.ScopeProject, ProjectID: 1}, u)
}

// issue builds an entity owned by project 1 with the given overrides.
func issue(id int64, overrides map[string]any) *entity.Entity {
	values := map[string]any{
		"project_id":  int64(1),
		"tracker_id":  int64(1),
		"status_id":   int64(1),
		"priority_id": int64(5),
		"author_id":   int64(2),
		"subject":     "Cannot print recipes",
	}
	for k, v := range overrides {
		if v == nil {
			delete(values, k)
			continue
		}
		values[k] = v
	}
	return &entity.Entity{ID: id, Kind: "issue", Values: values}
}
