package planner

import (
	"strconv"
	"time"

	"github.com/queryline/queryline/queryline/entity"
	qlerrors "github.com/queryline/queryline/queryline/errors"
	"github.com/queryline/queryline/queryline/field"
	"github.com/queryline/queryline/queryline/query"
)

// floatEqTolerance is the band used for float equality filters.
const floatEqTolerance = 1e-5

// Context carries the per-evaluation inputs of compilation. Today is computed
// once, in the caller's time zone, so relative-date windows are consistent
// across the whole result set.
type Context struct {
	Today     time.Time
	WeekStart time.Weekday
	User      *entity.User
	Ref       *entity.RefData
}

func (c *Context) dateContext() query.DateContext {
	return query.DateContext{Today: c.Today, WeekStart: c.WeekStart}
}

// CompileSpec compiles a validated spec's filters and project scope into a
// single predicate tree. Fragments are ANDed; an empty filter set yields True.
func CompileSpec(spec *query.Spec, av *query.Available, ctx *Context) (Node, error) {
	var children []Node

	if scope := scopeNode(spec, ctx); scope != nil {
		children = append(children, scope)
	}

	for _, f := range spec.Filters {
		if f.Field == "subproject_id" {
			// folded into the project scope
			continue
		}
		def, ok := av.Get(f.Field)
		if !ok {
			return nil, qlerrors.UnknownField(f.Field)
		}
		node, err := compileFilter(def, f, ctx)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}

	switch len(children) {
	case 0:
		return True{}, nil
	case 1:
		return children[0], nil
	default:
		return And{Children: children}, nil
	}
}

// scopeNode resolves the project scope, honoring a subproject_id filter:
// "=" keeps the selected subprojects, "!*" restricts to the main project,
// anything else widens to all descendants.
func scopeNode(spec *query.Spec, ctx *Context) Node {
	if spec.Scope.Kind == query.ScopeGlobal {
		return nil
	}
	ids := []int64{spec.Scope.ProjectID}
	descendants := ctx.Ref.ProjectDescendants(spec.Scope.ProjectID)

	if f, ok := spec.Filter("subproject_id"); ok && len(descendants) > 0 {
		switch f.Operator {
		case field.OpEquals:
			for _, v := range f.Values {
				if id, err := strconv.ParseInt(v, 10, 64); err == nil {
					ids = append(ids, id)
				}
			}
		case field.OpNone:
			// main project only
		default:
			ids = append(ids, descendants...)
		}
	} else if spec.Scope.Kind == query.ScopeProjectTree {
		ids = append(ids, descendants...)
	}
	return ProjectIn{IDs: ids}
}

func compileFilter(def query.FilterDef, f query.Filter, ctx *Context) (Node, error) {
	values := presentValues(f.Values, f.Operator)

	switch f.Field {
	case "status_id":
		switch f.Operator {
		case field.OpOpen:
			return In{Ref: Ref{Field: "status_id"}, Values: int64Strings(ctx.Ref.OpenStatusIDs())}, nil
		case field.OpClosed:
			return In{Ref: Ref{Field: "status_id"}, Values: int64Strings(ctx.Ref.ClosedStatusIDs())}, nil
		}
	case "watcher_id":
		return WatchedBy{UserIDs: parseIDs(substituteMe(values, ctx, false)), Negate: f.Operator == field.OpNot}, nil
	case "member_of_group":
		return compileMemberOfGroup(f.Operator, values, ctx), nil
	case "assigned_to_role":
		return compileAssignedToRole(f.Operator, values), nil
	case "project.status":
		return In{Ref: Ref{Field: "status", OnProject: true}, Values: values, Negate: f.Operator == field.OpNot}, nil
	}

	ref := Ref{Field: f.Field, CustomFieldID: def.CustomFieldID}
	if def.CustomFieldID > 0 {
		cf, ok := ctx.Ref.CustomFieldByID(def.CustomFieldID)
		if !ok || !customFieldInScope(cf, ctx) {
			// entities simply have no matching custom value
			return False{}, nil
		}
	}

	switch f.Field {
	case "assigned_to_id":
		values = substituteMe(values, ctx, true)
	case "author_id":
		values = substituteMe(values, ctx, false)
	}

	return compileTyped(def, ref, f.Operator, values, ctx)
}

func compileTyped(def query.FilterDef, ref Ref, op field.Operator, values []string, ctx *Context) (Node, error) {
	switch op {
	case field.OpAny:
		return Present{Ref: ref}, nil
	case field.OpNone:
		return Blank{Ref: ref}, nil
	case field.OpContains:
		return Substr{Ref: ref, Term: firstValue(values)}, nil
	case field.OpNotContains:
		return Substr{Ref: ref, Term: firstValue(values), Negate: true}, nil
	}

	switch def.Type {
	case field.Date, field.DateTime:
		from, to, err := ctx.dateContext().Window(op, values)
		if err != nil {
			if e, ok := err.(*qlerrors.Error); ok && e.Field == "" {
				e.Field = def.Field
			}
			return nil, err
		}
		return DateRange{Ref: ref, From: from, To: to}, nil

	case field.Integer, field.Float:
		return compileNumeric(def, ref, op, values)

	case field.Bool:
		fallthrough
	default:
		switch op {
		case field.OpEquals:
			if len(values) == 0 {
				return False{}, nil
			}
			return In{Ref: ref, Values: values}, nil
		case field.OpNot:
			if len(values) == 0 {
				return True{}, nil
			}
			return In{Ref: ref, Values: values, Negate: true}, nil
		}
	}
	return nil, qlerrors.IllegalOperator(def.Field, string(op))
}

func compileNumeric(def query.FilterDef, ref Ref, op field.Operator, values []string) (Node, error) {
	parse := func(s string) (float64, error) {
		var n float64
		var err error
		if def.Type == field.Integer {
			var i int64
			i, err = query.ParseInt(s)
			n = float64(i)
		} else {
			n, err = query.ParseFloat(s)
		}
		if err != nil {
			return 0, qlerrors.Validation(def.Field, "invalid numeric value: "+s)
		}
		return n, nil
	}

	switch op {
	case field.OpEquals:
		if len(values) == 0 {
			return False{}, nil
		}
		n, err := parse(values[0])
		if err != nil {
			return nil, err
		}
		tol := 0.0
		if def.Type == field.Float {
			tol = floatEqTolerance
		}
		return NumEq{Ref: ref, Value: n, Tolerance: tol}, nil
	case field.OpGte, field.OpLte:
		n, err := parse(firstValue(values))
		if err != nil {
			return nil, err
		}
		cmp := CmpGte
		if op == field.OpLte {
			cmp = CmpLte
		}
		return NumCmp{Ref: ref, Op: cmp, Value: n}, nil
	case field.OpBetween:
		if len(values) < 2 {
			return nil, qlerrors.Validation(def.Field, "between requires two values")
		}
		lo, err := parse(values[0])
		if err != nil {
			return nil, err
		}
		hi, err := parse(values[1])
		if err != nil {
			return nil, err
		}
		return NumRange{Ref: ref, Lo: lo, Hi: hi}, nil
	}
	return nil, qlerrors.IllegalOperator(def.Field, string(op))
}

func compileMemberOfGroup(op field.Operator, values []string, ctx *Context) Node {
	var groupIDs []int64
	negate := false
	switch op {
	case field.OpAny:
		groupIDs = allGroupIDs(ctx.Ref)
	case field.OpNone:
		groupIDs = allGroupIDs(ctx.Ref)
		negate = true
	case field.OpNot:
		groupIDs = parseIDs(values)
		negate = true
	default:
		groupIDs = parseIDs(values)
	}
	members := ctx.Ref.GroupMemberIDs(groupIDs)
	return In{Ref: Ref{Field: "assigned_to_id"}, Values: int64Strings(members), Negate: negate}
}

func compileAssignedToRole(op field.Operator, values []string) Node {
	switch op {
	case field.OpAny:
		return AssignedToRole{AnyMember: true}
	case field.OpNone:
		return AssignedToRole{AnyMember: true, Negate: true}
	case field.OpNot:
		return AssignedToRole{RoleIDs: parseIDs(values), Negate: true}
	default:
		return AssignedToRole{RoleIDs: parseIDs(values)}
	}
}

// substituteMe expands the "me" token to the current user id; for assignee
// filters it also brings in the user's groups. Anonymous callers resolve to
// an id that matches nothing.
func substituteMe(values []string, ctx *Context, withGroups bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != query.MeToken {
			out = append(out, v)
			continue
		}
		if !ctx.User.Logged() {
			out = append(out, "0")
			continue
		}
		out = append(out, strconv.FormatInt(ctx.User.ID, 10))
		if withGroups {
			for _, gid := range ctx.User.GroupIDs {
				out = append(out, strconv.FormatInt(gid, 10))
			}
		}
	}
	return out
}

func customFieldInScope(cf entity.CustomField, ctx *Context) bool {
	if len(cf.TrackerIDs) > 0 {
		found := false
		for _, tid := range cf.TrackerIDs {
			if _, ok := ctx.Ref.TrackerByID(tid); ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if cf.ForAll {
		return true
	}
	return len(cf.ProjectIDs) > 0
}

func presentValues(values []string, op field.Operator) []string {
	if !op.RequiresValues() {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstValue(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

func parseIDs(values []string) []int64 {
	var out []int64
	for _, v := range values {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func allGroupIDs(ref *entity.RefData) []int64 {
	out := make([]int64, 0, len(ref.Groups))
	for _, g := range ref.Groups {
		out = append(out, g.ID)
	}
	return out
}

func int64Strings(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}
