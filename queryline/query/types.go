package query

import "github.com/queryline/queryline/queryline/field"

// Filter is a single (field, operator, values) selection constraint. Values
// stay raw strings until compilation. Filters are never mutated in place; a
// re-filter replaces the record wholesale.
type Filter struct {
	Field    string         `json:"field"`
	Operator field.Operator `json:"operator"`
	Values   []string       `json:"values"`
}

// SortCriterion is one (field, direction) sort token.
type SortCriterion struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

// ScopeKind selects how the project scope resolves.
type ScopeKind string

const (
	ScopeGlobal      ScopeKind = "global"
	ScopeProject     ScopeKind = "project"
	ScopeProjectTree ScopeKind = "project_tree"
)

// Scope is the project scope a query evaluates within.
type Scope struct {
	Kind      ScopeKind `json:"kind"`
	ProjectID int64     `json:"project_id,omitempty"`
}

// MaxSortCriteria caps user-supplied sort tokens; the id tie-break is extra.
const MaxSortCriteria = 3

// Spec is the full request for one evaluation: filters, sort, grouping,
// columns and totals. Filters preserve submission order for re-display;
// evaluation order is irrelevant since fragments are ANDed.
type Spec struct {
	Scope   Scope           `json:"scope"`
	Filters []Filter        `json:"filters"`
	GroupBy string          `json:"group_by,omitempty"`
	Sort    []SortCriterion `json:"sort,omitempty"`
	Columns []string        `json:"columns,omitempty"`
	Totals  []string        `json:"totals,omitempty"`
}

// HasFilter reports whether a filter exists for the field.
func (s *Spec) HasFilter(fieldName string) bool {
	_, ok := s.Filter(fieldName)
	return ok
}

// Filter returns the filter for the field, if any.
func (s *Spec) Filter(fieldName string) (Filter, bool) {
	for _, f := range s.Filters {
		if f.Field == fieldName {
			return f, true
		}
	}
	return Filter{}, false
}

// SetFilter adds or replaces the filter for f.Field, preserving submission
// order for existing fields.
func (s *Spec) SetFilter(f Filter) {
	for i := range s.Filters {
		if s.Filters[i].Field == f.Field {
			s.Filters[i] = f
			return
		}
	}
	s.Filters = append(s.Filters, f)
}

// SetSort clamps the criteria list to MaxSortCriteria and drops blank fields.
func (s *Spec) SetSort(criteria []SortCriterion) {
	var kept []SortCriterion
	for _, c := range criteria {
		if c.Field == "" {
			continue
		}
		kept = append(kept, c)
		if len(kept) == MaxSortCriteria {
			break
		}
	}
	s.Sort = kept
}

// Clone returns a deep copy of the spec.
func (s *Spec) Clone() *Spec {
	out := &Spec{
		Scope:   s.Scope,
		GroupBy: s.GroupBy,
	}
	for _, f := range s.Filters {
		vals := make([]string, len(f.Values))
		copy(vals, f.Values)
		out.Filters = append(out.Filters, Filter{Field: f.Field, Operator: f.Operator, Values: vals})
	}
	out.Sort = append(out.Sort, s.Sort...)
	out.Columns = append(out.Columns, s.Columns...)
	out.Totals = append(out.Totals, s.Totals...)
	return out
}
