package planner

import (
	"strconv"
	"strings"
	"time"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/query"
)

// Eval evaluates a predicate tree against a single entity. It is the
// reference execution of a compiled predicate; storage adapters must agree
// with it.
func Eval(n Node, e *entity.Entity, ref *entity.RefData) bool {
	switch node := n.(type) {
	case True:
		return true
	case False:
		return false
	case And:
		for _, c := range node.Children {
			if !Eval(c, e, ref) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range node.Children {
			if Eval(c, e, ref) {
				return true
			}
		}
		return false
	case Not:
		return !Eval(node.Inner, e, ref)
	case In:
		return evalIn(node, e, ref)
	case Blank:
		return !hasPresentValue(node.Ref, e, ref)
	case Present:
		return hasPresentValue(node.Ref, e, ref)
	case Substr:
		matched := false
		term := strings.ToLower(node.Term)
		for _, v := range stringValues(node.Ref, e, ref) {
			if strings.Contains(strings.ToLower(v), term) {
				matched = true
				break
			}
		}
		return matched != node.Negate
	case NumCmp:
		for _, v := range numericValues(node.Ref, e) {
			if node.Op == CmpGte && v >= node.Value {
				return true
			}
			if node.Op == CmpLte && v <= node.Value {
				return true
			}
		}
		return false
	case NumRange:
		for _, v := range numericValues(node.Ref, e) {
			if v >= node.Lo && v <= node.Hi {
				return true
			}
		}
		return false
	case NumEq:
		for _, v := range numericValues(node.Ref, e) {
			if v >= node.Value-node.Tolerance && v <= node.Value+node.Tolerance {
				return true
			}
		}
		return false
	case BoolEq:
		for _, v := range stringValues(node.Ref, e, ref) {
			if (v == "1" || v == "true") == node.Value {
				return true
			}
		}
		return false
	case DateRange:
		for _, d := range dateValues(node.Ref, e) {
			if node.From != nil && d.Before(*node.From) {
				continue
			}
			if node.To != nil && d.After(*node.To) {
				continue
			}
			return true
		}
		return false
	case ProjectIn:
		pid := e.ProjectID()
		for _, id := range node.IDs {
			if id == pid {
				return true
			}
		}
		return false
	case WatchedBy:
		watched := false
		for _, uid := range node.UserIDs {
			if e.WatchedBy(uid) {
				watched = true
				break
			}
		}
		return watched != node.Negate
	case AssignedToRole:
		return evalAssignedToRole(node, e, ref)
	}
	return false
}

func evalIn(node In, e *entity.Entity, ref *entity.RefData) bool {
	values := stringValues(node.Ref, e, ref)
	if len(values) == 0 {
		// unset: "not in" matches, "in" does not
		return node.Negate
	}
	set := make(map[string]bool, len(node.Values))
	for _, v := range node.Values {
		set[v] = true
	}
	for _, v := range values {
		if set[v] {
			return !node.Negate
		}
	}
	return node.Negate
}

func evalAssignedToRole(node AssignedToRole, e *entity.Entity, ref *entity.RefData) bool {
	assignee, ok := e.Int64("assigned_to_id")
	if !ok {
		return node.Negate
	}
	var matched bool
	if node.AnyMember {
		matched = ref.Member(e.ProjectID(), assignee)
	} else {
		held := ref.MemberRoles(e.ProjectID(), assignee)
		for _, want := range node.RoleIDs {
			for _, have := range held {
				if want == have {
					matched = true
				}
			}
		}
	}
	return matched != node.Negate
}

// stringValues resolves a field reference to its raw string values.
func stringValues(ref Ref, e *entity.Entity, data *entity.RefData) []string {
	if ref.CustomFieldID > 0 {
		var out []string
		for _, v := range e.Custom(ref.CustomFieldID) {
			if v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	if ref.OnProject {
		p, ok := data.ProjectByID(e.ProjectID())
		if !ok {
			return nil
		}
		switch ref.Field {
		case "status":
			return []string{strconv.FormatInt(p.Status, 10)}
		case "name":
			return []string{p.Name}
		}
		return nil
	}
	v, ok := e.Value(ref.Field)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case int64:
		return []string{strconv.FormatInt(val, 10)}
	case int:
		return []string{strconv.Itoa(val)}
	case float64:
		return []string{strconv.FormatFloat(val, 'f', -1, 64)}
	case bool:
		if val {
			return []string{"1"}
		}
		return []string{"0"}
	case time.Time:
		return []string{val.Format(query.DateLayout)}
	}
	return nil
}

func hasPresentValue(ref Ref, e *entity.Entity, data *entity.RefData) bool {
	return len(stringValues(ref, e, data)) > 0
}

func numericValues(ref Ref, e *entity.Entity) []float64 {
	if ref.CustomFieldID > 0 {
		var out []float64
		for _, v := range e.Custom(ref.CustomFieldID) {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				out = append(out, n)
			}
		}
		return out
	}
	if n, ok := e.Float64(ref.Field); ok {
		return []float64{n}
	}
	return nil
}

func dateValues(ref Ref, e *entity.Entity) []time.Time {
	toDay := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if ref.CustomFieldID > 0 {
		var out []time.Time
		for _, v := range e.Custom(ref.CustomFieldID) {
			if t, err := time.Parse(query.DateLayout, v); err == nil {
				out = append(out, t)
			}
		}
		return out
	}
	v, ok := e.Value(ref.Field)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case time.Time:
		return []time.Time{toDay(val)}
	case string:
		if t, err := time.Parse(query.DateLayout, val); err == nil {
			return []time.Time{t}
		}
	}
	return nil
}
