package queryline

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/planner"
)

// BlankGroupLabel labels the reserved group of entities with no value for the
// grouping field.
const BlankGroupLabel = "(blank)"

// Group is one bucket of a grouped result: its typed key, display label,
// entity count and per-field totals.
type Group struct {
	Key    any
	Label  string
	Count  int
	Totals Totals
}

// Totals maps a field name to its decimal sum. Accumulation is exact;
// rounding happens only when a renderer formats the value.
type Totals map[string]decimal.Decimal

func newTotals(cols []Column) Totals {
	t := make(Totals, len(cols))
	for _, c := range cols {
		t[c.Name] = decimal.Zero
	}
	return t
}

func (t Totals) add(e *entity.Entity, cols []Column) {
	for _, c := range cols {
		for _, d := range summableValues(e, c) {
			t[c.Name] = t[c.Name].Add(d)
		}
	}
}

// GroupAndTotal partitions an ordered, visibility-filtered stream into groups
// by the typed value of the group column and computes per-group and grand
// totals. Entities group by value, not display label, and a blank key always
// yields its own labeled group. With no group column it returns only the
// grand totals.
func GroupAndTotal(entities []*entity.Entity, groupBy *Column, totalCols []Column, ref *entity.RefData) ([]Group, Totals) {
	grand := newTotals(totalCols)
	for _, e := range entities {
		grand.add(e, totalCols)
	}
	if groupBy == nil {
		return nil, grand
	}

	keyOf := planner.GroupKeyFunc(groupBy.Name, ref)
	var groups []Group
	index := map[any]int{}
	for _, e := range entities {
		key, ok := keyOf(e)
		if !ok {
			key = nil
		}
		i, exists := index[key]
		if !exists {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Key:    key,
				Label:  groupLabel(key, groupBy, ref),
				Totals: newTotals(totalCols),
			})
		}
		groups[i].Count++
		groups[i].Totals.add(e, totalCols)
	}
	return groups, grand
}

// groupLabel resolves a group key to its display string via reference data.
func groupLabel(key any, groupBy *Column, ref *entity.RefData) string {
	if key == nil {
		return BlankGroupLabel
	}
	id, isID := key.(int64)
	if isID {
		switch groupBy.Name {
		case "project":
			if p, ok := ref.ProjectByID(id); ok {
				return p.Name
			}
		case "tracker":
			if t, ok := ref.TrackerByID(id); ok {
				return t.Name
			}
		case "status":
			if s, ok := ref.StatusByID(id); ok {
				return s.Name
			}
		case "priority":
			if p, ok := ref.PriorityByID(id); ok {
				return p.Name
			}
		case "author", "assigned_to":
			if u, ok := ref.UserByID(id); ok {
				return u.Name()
			}
		case "category":
			if c, ok := ref.CategoryByID(id); ok {
				return c.Name
			}
		case "fixed_version":
			if v, ok := ref.VersionByID(id); ok {
				return v.Name
			}
		}
		return strconv.FormatInt(id, 10)
	}
	switch v := key.(type) {
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return BlankGroupLabel
}

// summableValues extracts the decimal values an entity contributes to a
// totaled column. Custom fields may carry several values; each contributes.
func summableValues(e *entity.Entity, c Column) []decimal.Decimal {
	if c.CustomFieldID > 0 {
		var out []decimal.Decimal
		for _, raw := range e.Custom(c.CustomFieldID) {
			if raw == "" {
				continue
			}
			if d, err := decimal.NewFromString(raw); err == nil {
				out = append(out, d)
			}
		}
		return out
	}
	if n, ok := e.Float64(c.Name); ok {
		return []decimal.Decimal{decimal.NewFromFloat(n)}
	}
	return nil
}
