package queryline

import (
	"sort"
	"strconv"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/planner"
)

// ProjectScoper implements the standard visibility rule: an entity is
// visible when its project is active and either public or one the user is a
// member of, and, unless the user is an admin, private entities are visible
// only to their author, assignee or watcher.
type ProjectScoper struct {
	Ref *entity.RefData
}

func (s *ProjectScoper) VisiblePredicate(u *entity.User) planner.Node {
	project := planner.Node(planner.ProjectIn{IDs: s.visibleProjectIDs(u)})
	if u != nil && u.Admin {
		return project
	}
	var uid int64
	if u != nil {
		uid = u.ID
	}
	assignees := []string{strconv.FormatInt(uid, 10)}
	if u != nil {
		for _, gid := range u.GroupIDs {
			assignees = append(assignees, strconv.FormatInt(gid, 10))
		}
	}
	notPrivate := planner.Not{Inner: planner.BoolEq{Ref: planner.Ref{Field: "is_private"}, Value: true}}
	privacy := planner.Or{Children: []planner.Node{
		notPrivate,
		planner.In{Ref: planner.Ref{Field: "author_id"}, Values: []string{strconv.FormatInt(uid, 10)}},
		planner.In{Ref: planner.Ref{Field: "assigned_to_id"}, Values: assignees},
		planner.WatchedBy{UserIDs: []int64{uid}},
	}}
	return planner.And{Children: []planner.Node{project, privacy}}
}

func (s *ProjectScoper) visibleProjectIDs(u *entity.User) []int64 {
	admin := u != nil && u.Admin
	member := map[int64]bool{}
	if u != nil {
		for _, m := range s.Ref.Memberships {
			if m.UserID == u.ID {
				member[m.ProjectID] = true
			}
		}
	}
	var ids []int64
	for _, p := range s.Ref.Projects {
		if p.Status != entity.ProjectActive {
			continue
		}
		if admin || p.Public || member[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
