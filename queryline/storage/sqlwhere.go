package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/queryline/queryline/queryline/planner"
	"github.com/queryline/queryline/queryline/query"
	"github.com/queryline/queryline/queryline/storage/sqlbuilder"
)

// entityColumns whitelists the addressable built-in attributes and their
// entity-table columns.
var entityColumns = map[string]string{
	"project_id":       "project_id",
	"tracker_id":       "tracker_id",
	"status_id":        "status_id",
	"priority_id":      "priority_id",
	"author_id":        "author_id",
	"assigned_to_id":   "assigned_to_id",
	"category_id":      "category_id",
	"fixed_version_id": "fixed_version_id",
	"parent_id":        "parent_id",
	"subject":          "subject",
	"description":      "description",
	"start_date":       "start_date",
	"due_date":         "due_date",
	"estimated_hours":  "estimated_hours",
	"spent_hours":      "spent_hours",
	"done_ratio":       "done_ratio",
	"is_private":       "is_private",
	"created_on":       "created_on",
	"updated_on":       "updated_on",
}

// WhereSQL translates a compiled predicate into a WHERE fragment over the
// entities table, binding arguments through b. The translation must agree
// with planner.Eval.
func WhereSQL(n planner.Node, b *sqlbuilder.Builder) (string, error) {
	switch node := n.(type) {
	case planner.True:
		return "1=1", nil
	case planner.False:
		return "1=0", nil
	case planner.And:
		return joinChildren(node.Children, " AND ", b)
	case planner.Or:
		return joinChildren(node.Children, " OR ", b)
	case planner.Not:
		inner, err := WhereSQL(node.Inner, b)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case planner.In:
		return inSQL(node, b)
	case planner.Blank:
		return blankSQL(node.Ref, b, true)
	case planner.Present:
		return blankSQL(node.Ref, b, false)
	case planner.Substr:
		return substrSQL(node, b)
	case planner.NumCmp:
		return numCondSQL(node.Ref, fmt.Sprintf("%%s %s %s", node.Op, b.Arg(node.Value)), b)
	case planner.NumRange:
		return numCondSQL(node.Ref, fmt.Sprintf("%%s BETWEEN %s AND %s", b.Arg(node.Lo), b.Arg(node.Hi)), b)
	case planner.NumEq:
		lo := b.Arg(node.Value - node.Tolerance)
		hi := b.Arg(node.Value + node.Tolerance)
		return numCondSQL(node.Ref, fmt.Sprintf("%%s BETWEEN %s AND %s", lo, hi), b)
	case planner.BoolEq:
		col, err := columnFor(node.Ref)
		if err != nil {
			return "", err
		}
		v := 0
		if node.Value {
			v = 1
		}
		return fmt.Sprintf("%s = %s", col, b.Arg(v)), nil
	case planner.DateRange:
		return dateRangeSQL(node, b)
	case planner.ProjectIn:
		vals := make([]any, len(node.IDs))
		for i, id := range node.IDs {
			vals[i] = id
		}
		return fmt.Sprintf("entities.project_id IN (%s)", b.ArgList(vals)), nil
	case planner.WatchedBy:
		return watchedBySQL(node, b)
	case planner.AssignedToRole:
		return assignedToRoleSQL(node, b)
	}
	return "", fmt.Errorf("unsupported predicate node: %T", n)
}

func joinChildren(children []planner.Node, sep string, b *sqlbuilder.Builder) (string, error) {
	if len(children) == 0 {
		return "1=1", nil
	}
	parts := make([]string, 0, len(children))
	for _, c := range children {
		s, err := WhereSQL(c, b)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+s+")")
	}
	return strings.Join(parts, sep), nil
}

func columnFor(ref planner.Ref) (string, error) {
	col, ok := entityColumns[ref.Field]
	if !ok {
		return "", fmt.Errorf("field %q has no storage column", ref.Field)
	}
	return "entities." + col, nil
}

// bindVal binds identifier-like values as integers so numeric columns compare
// natively on every backend.
func bindVal(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

func inSQL(node planner.In, b *sqlbuilder.Builder) (string, error) {
	if node.Ref.CustomFieldID > 0 {
		return customInSQL(node, b)
	}
	if node.Ref.OnProject {
		if len(node.Values) == 0 {
			if node.Negate {
				return "1=1", nil
			}
			return "1=0", nil
		}
		vals := make([]any, len(node.Values))
		for i, v := range node.Values {
			vals[i] = bindVal(v)
		}
		op := "IN"
		if node.Negate {
			op = "NOT IN"
		}
		return fmt.Sprintf("entities.project_id %s (SELECT id FROM projects WHERE %s IN (%s))",
			op, projectColumn(node.Ref.Field), b.ArgList(vals)), nil
	}
	col, err := columnFor(node.Ref)
	if err != nil {
		return "", err
	}
	if len(node.Values) == 0 {
		if node.Negate {
			return "1=1", nil
		}
		return "1=0", nil
	}
	vals := make([]any, len(node.Values))
	for i, v := range node.Values {
		vals[i] = bindVal(v)
	}
	if node.Negate {
		return fmt.Sprintf("(%s IS NULL OR %s NOT IN (%s))", col, col, b.ArgList(vals)), nil
	}
	return fmt.Sprintf("%s IN (%s)", col, b.ArgList(vals)), nil
}

func projectColumn(field string) string {
	switch field {
	case "status":
		return "status"
	case "name":
		return "name"
	}
	return "id"
}

func customInSQL(node planner.In, b *sqlbuilder.Builder) (string, error) {
	if len(node.Values) == 0 {
		if node.Negate {
			return "1=1", nil
		}
		return "1=0", nil
	}
	vals := make([]any, len(node.Values))
	for i, v := range node.Values {
		vals[i] = v
	}
	sub := fmt.Sprintf(
		"SELECT 1 FROM custom_values cv WHERE cv.entity_id = entities.id AND cv.custom_field_id = %s AND cv.value IN (%s)",
		b.Arg(node.Ref.CustomFieldID), b.ArgList(vals),
	)
	if node.Negate {
		return "NOT EXISTS (" + sub + ")", nil
	}
	return "EXISTS (" + sub + ")", nil
}

func blankSQL(ref planner.Ref, b *sqlbuilder.Builder, blank bool) (string, error) {
	if ref.CustomFieldID > 0 {
		sub := fmt.Sprintf(
			"SELECT 1 FROM custom_values cv WHERE cv.entity_id = entities.id AND cv.custom_field_id = %s AND cv.value <> ''",
			b.Arg(ref.CustomFieldID),
		)
		if blank {
			return "NOT EXISTS (" + sub + ")", nil
		}
		return "EXISTS (" + sub + ")", nil
	}
	col, err := columnFor(ref)
	if err != nil {
		return "", err
	}
	if blank {
		return fmt.Sprintf("(%s IS NULL OR CAST(%s AS TEXT) = '')", col, col), nil
	}
	return fmt.Sprintf("(%s IS NOT NULL AND CAST(%s AS TEXT) <> '')", col, col), nil
}

func substrSQL(node planner.Substr, b *sqlbuilder.Builder) (string, error) {
	pattern := "%" + strings.ToLower(node.Term) + "%"
	if node.Ref.CustomFieldID > 0 {
		sub := fmt.Sprintf(
			"SELECT 1 FROM custom_values cv WHERE cv.entity_id = entities.id AND cv.custom_field_id = %s AND LOWER(cv.value) LIKE %s",
			b.Arg(node.Ref.CustomFieldID), b.Arg(pattern),
		)
		if node.Negate {
			return "NOT EXISTS (" + sub + ")", nil
		}
		return "EXISTS (" + sub + ")", nil
	}
	col, err := columnFor(node.Ref)
	if err != nil {
		return "", err
	}
	if node.Negate {
		return fmt.Sprintf("(%s IS NULL OR LOWER(%s) NOT LIKE %s)", col, col, b.Arg(pattern)), nil
	}
	return fmt.Sprintf("LOWER(%s) LIKE %s", col, b.Arg(pattern)), nil
}

// numCondSQL renders a numeric condition template ("%s" is the value
// expression) against a built-in column or custom values.
func numCondSQL(ref planner.Ref, tmpl string, b *sqlbuilder.Builder) (string, error) {
	if ref.CustomFieldID > 0 {
		cond := fmt.Sprintf(tmpl, "CAST(cv.value AS DECIMAL)")
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM custom_values cv WHERE cv.entity_id = entities.id AND cv.custom_field_id = %s AND cv.value <> '' AND %s)",
			b.Arg(ref.CustomFieldID), cond,
		), nil
	}
	col, err := columnFor(ref)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(tmpl, col), nil
}

func dateRangeSQL(node planner.DateRange, b *sqlbuilder.Builder) (string, error) {
	var expr string
	if node.Ref.CustomFieldID > 0 {
		var conds []string
		if node.From != nil {
			conds = append(conds, "cv.value >= "+b.Arg(node.From.Format(query.DateLayout)))
		}
		if node.To != nil {
			conds = append(conds, "cv.value <= "+b.Arg(node.To.Format(query.DateLayout)))
		}
		if len(conds) == 0 {
			conds = append(conds, "cv.value <> ''")
		}
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM custom_values cv WHERE cv.entity_id = entities.id AND cv.custom_field_id = %s AND %s)",
			b.Arg(node.Ref.CustomFieldID), strings.Join(conds, " AND "),
		), nil
	}
	col, err := columnFor(node.Ref)
	if err != nil {
		return "", err
	}
	// dates and datetimes are stored ISO-formatted; the first ten characters
	// are the day
	expr = fmt.Sprintf("SUBSTR(%s, 1, 10)", col)
	var conds []string
	if node.From != nil {
		conds = append(conds, expr+" >= "+b.Arg(node.From.Format(query.DateLayout)))
	}
	if node.To != nil {
		conds = append(conds, expr+" <= "+b.Arg(node.To.Format(query.DateLayout)))
	}
	if len(conds) == 0 {
		return fmt.Sprintf("%s IS NOT NULL", col), nil
	}
	conds = append([]string{fmt.Sprintf("%s IS NOT NULL", col)}, conds...)
	return "(" + strings.Join(conds, " AND ") + ")", nil
}

func watchedBySQL(node planner.WatchedBy, b *sqlbuilder.Builder) (string, error) {
	if len(node.UserIDs) == 0 {
		if node.Negate {
			return "1=1", nil
		}
		return "1=0", nil
	}
	vals := make([]any, len(node.UserIDs))
	for i, id := range node.UserIDs {
		vals[i] = id
	}
	sub := fmt.Sprintf("SELECT w.entity_id FROM watchers w WHERE w.user_id IN (%s)", b.ArgList(vals))
	if node.Negate {
		return "entities.id NOT IN (" + sub + ")", nil
	}
	return "entities.id IN (" + sub + ")", nil
}

func assignedToRoleSQL(node planner.AssignedToRole, b *sqlbuilder.Builder) (string, error) {
	var sub string
	if node.AnyMember {
		sub = "SELECT m.user_id FROM memberships m WHERE m.project_id = entities.project_id"
	} else {
		vals := make([]any, len(node.RoleIDs))
		for i, id := range node.RoleIDs {
			vals[i] = id
		}
		if len(vals) == 0 {
			if node.Negate {
				return "1=1", nil
			}
			return "1=0", nil
		}
		sub = fmt.Sprintf("SELECT mr.user_id FROM member_roles mr WHERE mr.project_id = entities.project_id AND mr.role_id IN (%s)", b.ArgList(vals))
	}
	if node.Negate {
		return fmt.Sprintf("(entities.assigned_to_id IS NULL OR entities.assigned_to_id NOT IN (%s))", sub), nil
	}
	return fmt.Sprintf("entities.assigned_to_id IN (%s)", sub), nil
}
