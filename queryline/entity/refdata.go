package entity

import (
	"time"

	"github.com/queryline/queryline/queryline/field"
)

// Project activity states, mirroring the tracker's status column.
const (
	ProjectActive int64 = 1
	ProjectClosed int64 = 5
)

type Status struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Closed   bool   `json:"closed"`
}

type Tracker struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type Priority struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type Category struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
}

type Version struct {
	ID            int64      `json:"id"`
	ProjectID     int64      `json:"project_id"`
	Name          string     `json:"name"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	Sharing       string     `json:"sharing,omitempty"` // "", "descendants", "hierarchy", "tree", "system"
}

type User struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Admin     bool    `json:"admin"`
	GroupIDs  []int64 `json:"group_ids,omitempty"`
}

// Logged reports whether the user is an authenticated principal.
func (u *User) Logged() bool {
	return u != nil && u.ID > 0
}

// Name returns the display name used for natural user ordering.
func (u *User) Name() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Login
	}
	return u.FirstName + " " + u.LastName
}

type Group struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	UserIDs []int64 `json:"user_ids,omitempty"`
}

type Role struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Givable bool   `json:"givable"`
}

type Project struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id,omitempty"` // 0 = root
	Status   int64  `json:"status"`
	Public   bool   `json:"public"`
}

// Membership ties a user to a project with a set of roles.
type Membership struct {
	ProjectID int64   `json:"project_id"`
	UserID    int64   `json:"user_id"`
	RoleIDs   []int64 `json:"role_ids,omitempty"`
}

// CustomField describes a user-defined field. Format names the base field
// type whose operator vocabulary and compile rules the field borrows.
type CustomField struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Format         field.Type `json:"format"`
	Multi          bool       `json:"multi,omitempty"`
	Filterable     bool       `json:"filterable"`
	Summable       bool       `json:"summable,omitempty"`
	ForAll         bool       `json:"for_all,omitempty"`
	TrackerIDs     []int64    `json:"tracker_ids,omitempty"`
	ProjectIDs     []int64    `json:"project_ids,omitempty"`
	PossibleValues []string   `json:"possible_values,omitempty"`
}

// AppliesToProject reports whether the field is usable within the project.
func (cf *CustomField) AppliesToProject(projectID int64) bool {
	if cf.ForAll {
		return true
	}
	for _, id := range cf.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// RefData is the read-only reference data the engine resolves names, orders
// and memberships against. It is safe to share across concurrent evaluations.
type RefData struct {
	Statuses     []Status      `json:"statuses"`
	Trackers     []Tracker     `json:"trackers"`
	Priorities   []Priority    `json:"priorities"`
	Categories   []Category    `json:"categories,omitempty"`
	Versions     []Version     `json:"versions,omitempty"`
	Users        []User        `json:"users,omitempty"`
	Groups       []Group       `json:"groups,omitempty"`
	Roles        []Role        `json:"roles,omitempty"`
	Projects     []Project     `json:"projects,omitempty"`
	Memberships  []Membership  `json:"memberships,omitempty"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`

	// FirstDayOfWeek anchors "this week" windows. Zero value is Sunday; use
	// time.Monday for ISO weeks.
	FirstDayOfWeek time.Weekday `json:"first_day_of_week,omitempty"`
}

func (r *RefData) StatusByID(id int64) (Status, bool) {
	for _, s := range r.Statuses {
		if s.ID == id {
			return s, true
		}
	}
	return Status{}, false
}

// ClosedStatusIDs returns the ids of statuses flagged closed.
func (r *RefData) ClosedStatusIDs() []int64 {
	var ids []int64
	for _, s := range r.Statuses {
		if s.Closed {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// OpenStatusIDs returns the ids of statuses not flagged closed.
func (r *RefData) OpenStatusIDs() []int64 {
	var ids []int64
	for _, s := range r.Statuses {
		if !s.Closed {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func (r *RefData) TrackerByID(id int64) (Tracker, bool) {
	for _, t := range r.Trackers {
		if t.ID == id {
			return t, true
		}
	}
	return Tracker{}, false
}

func (r *RefData) PriorityByID(id int64) (Priority, bool) {
	for _, p := range r.Priorities {
		if p.ID == id {
			return p, true
		}
	}
	return Priority{}, false
}

func (r *RefData) CategoryByID(id int64) (Category, bool) {
	for _, c := range r.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func (r *RefData) VersionByID(id int64) (Version, bool) {
	for _, v := range r.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return Version{}, false
}

func (r *RefData) UserByID(id int64) (User, bool) {
	for _, u := range r.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func (r *RefData) GroupByID(id int64) (Group, bool) {
	for _, g := range r.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

func (r *RefData) ProjectByID(id int64) (Project, bool) {
	for _, p := range r.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

func (r *RefData) CustomFieldByID(id int64) (CustomField, bool) {
	for _, cf := range r.CustomFields {
		if cf.ID == id {
			return cf, true
		}
	}
	return CustomField{}, false
}

// ProjectDescendants returns the ids of all (transitive) children of the
// project, in a stable order.
func (r *RefData) ProjectDescendants(projectID int64) []int64 {
	var out []int64
	frontier := []int64{projectID}
	for len(frontier) > 0 {
		parent := frontier[0]
		frontier = frontier[1:]
		for _, p := range r.Projects {
			if p.ParentID == parent {
				out = append(out, p.ID)
				frontier = append(frontier, p.ID)
			}
		}
	}
	return out
}

// GroupMemberIDs returns the union of user ids across the named groups,
// deduplicated, in a stable order.
func (r *RefData) GroupMemberIDs(groupIDs []int64) []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, gid := range groupIDs {
		g, ok := r.GroupByID(gid)
		if !ok {
			continue
		}
		for _, uid := range g.UserIDs {
			if !seen[uid] {
				seen[uid] = true
				out = append(out, uid)
			}
		}
	}
	return out
}

// MemberRoles returns the role ids the user holds in the project.
func (r *RefData) MemberRoles(projectID, userID int64) []int64 {
	for _, m := range r.Memberships {
		if m.ProjectID == projectID && m.UserID == userID {
			return m.RoleIDs
		}
	}
	return nil
}

// Member reports whether the user belongs to the project.
func (r *RefData) Member(projectID, userID int64) bool {
	for _, m := range r.Memberships {
		if m.ProjectID == projectID && m.UserID == userID {
			return true
		}
	}
	return false
}
