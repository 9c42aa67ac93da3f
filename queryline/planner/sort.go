package planner

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/queryline/queryline/queryline/entity"
	"github.com/queryline/queryline/queryline/field"
	"github.com/queryline/queryline/queryline/query"
)

// sortValue is one comparable key. Null values (field unset or aggregate not
// computable) sort after everything else regardless of direction; their exact
// position was database-dependent upstream, pinning them last keeps repeated
// evaluations stable.
type sortValue struct {
	str   string
	num   float64
	isNum bool
	null  bool
}

func numValue(n float64) sortValue { return sortValue{num: n, isNum: true} }
func strValue(s string) sortValue  { return sortValue{str: s} }
func nullValue() sortValue         { return sortValue{null: true} }

func (v sortValue) compare(o sortValue) int {
	if v.null || o.null {
		switch {
		case v.null && o.null:
			return 0
		case v.null:
			return 1
		default:
			return -1
		}
	}
	if v.isNum && o.isNum {
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(v.str, o.str)
}

type keyFunc func(e *entity.Entity) sortValue

type compiledKey struct {
	fn   keyFunc
	desc bool
}

// Plan is a resolved, stable ordering: the grouping key (if any) first, then
// the requested criteria, with an ascending-id tie-break always last.
type Plan struct {
	keys []compiledKey
}

// columns whose natural order is descending when used as a group sort
var defaultOrderDesc = map[string]bool{
	"priority":      true,
	"fixed_version": true,
	"updated_on":    true,
	"created_on":    true,
	"parent":        true,
}

// BuildPlan resolves sort criteria (and the group-by field, which must order
// the stream before its groups are cut) into comparable keys. Sorting applies
// whether or not the fields are displayed columns.
func BuildPlan(criteria []query.SortCriterion, groupBy string, ref *entity.RefData) *Plan {
	p := &Plan{}
	if groupBy != "" {
		p.keys = append(p.keys, compiledKey{fn: keyFor(groupBy, ref), desc: defaultOrderDesc[groupBy]})
	}
	for _, c := range criteria {
		p.keys = append(p.keys, compiledKey{fn: keyFor(c.Field, ref), desc: c.Descending})
	}
	return p
}

// Sort orders entities in place. Ties always break by ascending id so
// pagination is repeatable.
func (p *Plan) Sort(entities []*entity.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return p.Less(entities[i], entities[j])
	})
}

func (p *Plan) Less(a, b *entity.Entity) bool {
	for _, k := range p.keys {
		c := k.fn(a).compare(k.fn(b))
		if c == 0 {
			continue
		}
		if k.desc && !k.fn(a).null && !k.fn(b).null {
			return c > 0
		}
		return c < 0
	}
	return a.ID < b.ID
}

// GroupKeyFunc returns the typed grouping key extractor for a field.
func GroupKeyFunc(fieldName string, ref *entity.RefData) func(e *entity.Entity) (any, bool) {
	if id, ok := customFieldID(fieldName); ok {
		return func(e *entity.Entity) (any, bool) {
			vals := e.Custom(id)
			if len(vals) == 0 || vals[0] == "" {
				return nil, false
			}
			return vals[0], true
		}
	}
	attr := associationAttr(fieldName)
	return func(e *entity.Entity) (any, bool) {
		return e.Value(attr)
	}
}

// associationAttr maps a display column name to its storage attribute.
func associationAttr(name string) string {
	switch name {
	case "project":
		return "project_id"
	case "tracker":
		return "tracker_id"
	case "status":
		return "status_id"
	case "priority":
		return "priority_id"
	case "author":
		return "author_id"
	case "assigned_to":
		return "assigned_to_id"
	case "last_updated_by":
		return "last_updated_by_id"
	case "category":
		return "category_id"
	case "fixed_version":
		return "fixed_version_id"
	case "parent":
		return "parent_id"
	}
	return name
}

func customFieldID(name string) (int64, bool) {
	rest, ok := strings.CutPrefix(name, "cf_")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// keyFor resolves a sort field to its comparable key: association fields sort
// by the referenced record's natural order, custom fields by typed value,
// plain and computed fields by native value.
func keyFor(name string, ref *entity.RefData) keyFunc {
	if cfID, ok := customFieldID(name); ok {
		return customKey(cfID, ref)
	}

	switch name {
	case "id":
		return func(e *entity.Entity) sortValue { return numValue(float64(e.ID)) }
	case "project":
		return func(e *entity.Entity) sortValue {
			if p, ok := ref.ProjectByID(e.ProjectID()); ok {
				return strValue(strings.ToLower(p.Name))
			}
			return nullValue()
		}
	case "tracker", "tracker_id":
		return positionKey("tracker_id", func(id int64) (int, bool) {
			t, ok := ref.TrackerByID(id)
			return t.Position, ok
		})
	case "status", "status_id":
		return positionKey("status_id", func(id int64) (int, bool) {
			s, ok := ref.StatusByID(id)
			return s.Position, ok
		})
	case "priority", "priority_id":
		return positionKey("priority_id", func(id int64) (int, bool) {
			p, ok := ref.PriorityByID(id)
			return p.Position, ok
		})
	case "author", "assigned_to", "last_updated_by":
		attr := associationAttr(name)
		return func(e *entity.Entity) sortValue {
			id, ok := e.Int64(attr)
			if !ok {
				return nullValue()
			}
			if u, uok := ref.UserByID(id); uok {
				return strValue(strings.ToLower(u.Name()))
			}
			return nullValue()
		}
	case "category":
		return func(e *entity.Entity) sortValue {
			id, ok := e.Int64("category_id")
			if !ok {
				return nullValue()
			}
			if c, cok := ref.CategoryByID(id); cok {
				return strValue(strings.ToLower(c.Name))
			}
			return nullValue()
		}
	case "fixed_version":
		return func(e *entity.Entity) sortValue {
			id, ok := e.Int64("fixed_version_id")
			if !ok {
				return nullValue()
			}
			v, vok := ref.VersionByID(id)
			if !vok {
				return nullValue()
			}
			date := "0000-00-00"
			if v.EffectiveDate != nil {
				date = v.EffectiveDate.Format(query.DateLayout)
			}
			return strValue(date + "\x00" + strings.ToLower(v.Name))
		}
	}

	attr := associationAttr(name)
	return func(e *entity.Entity) sortValue {
		v, ok := e.Value(attr)
		if !ok {
			return nullValue()
		}
		switch val := v.(type) {
		case int64:
			return numValue(float64(val))
		case int:
			return numValue(float64(val))
		case float64:
			return numValue(val)
		case bool:
			if val {
				return numValue(1)
			}
			return numValue(0)
		case time.Time:
			return strValue(val.UTC().Format(time.RFC3339))
		case string:
			return strValue(strings.ToLower(val))
		}
		return nullValue()
	}
}

func positionKey(attr string, position func(id int64) (int, bool)) keyFunc {
	return func(e *entity.Entity) sortValue {
		id, ok := e.Int64(attr)
		if !ok {
			return nullValue()
		}
		pos, pok := position(id)
		if !pok {
			return nullValue()
		}
		return numValue(float64(pos))
	}
}

// customKey sorts custom field values by their typed form: numeric formats
// numerically, not lexically.
func customKey(cfID int64, ref *entity.RefData) keyFunc {
	cf, found := ref.CustomFieldByID(cfID)
	return func(e *entity.Entity) sortValue {
		vals := e.Custom(cfID)
		if len(vals) == 0 || vals[0] == "" {
			return nullValue()
		}
		if found {
			switch cf.Format {
			case field.Integer, field.Float:
				if n, err := strconv.ParseFloat(vals[0], 64); err == nil {
					return numValue(n)
				}
				return nullValue()
			case field.Date:
				return strValue(vals[0])
			}
		}
		return strValue(strings.ToLower(vals[0]))
	}
}
