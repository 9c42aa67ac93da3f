package query

import (
	"strings"

	"github.com/queryline/queryline/queryline/field"
)

// Params carries the decoded parameter multimap. Keys follow the parameter
// contract: "f[]", "op[<field>]", "v[<field>][]", "sort", "group_by", "c[]",
// "t[]", "set_filter", "query_id", plus bare "<field>=<expression>" short
// filters.
type Params map[string][]string

func (p Params) Get(key string) string {
	if vs := p[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (p Params) All(key string) []string {
	return p[key]
}

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// SetFilter reports whether filters were explicitly submitted.
func (p Params) SetFilter() bool {
	return p.Get("set_filter") == "1"
}

// QueryID returns the requested saved query id, if any.
func (p Params) QueryID() string {
	return p.Get("query_id")
}

// operatorFor returns the explicit-form operator submitted for a field.
func (p Params) operatorFor(fieldName string) (field.Operator, bool) {
	v, ok := p["op["+fieldName+"]"]
	if !ok || len(v) == 0 {
		return "", false
	}
	return field.Operator(v[0]), true
}

// valuesFor returns the explicit-form values submitted for a field.
func (p Params) valuesFor(fieldName string) []string {
	if vs, ok := p["v["+fieldName+"][]"]; ok {
		return vs
	}
	return nil
}

// BuildSpec assembles a Spec from request parameters. When base is non-nil it
// is the session-restored spec the parameters refine; filters are rebuilt only
// when explicitly submitted (set_filter) or when there is no base. The default
// filter applies only to a brand-new spec that submitted no filters.
func BuildSpec(p Params, av *Available, scope Scope, base *Spec) (*Spec, error) {
	var spec *Spec
	fresh := base == nil
	if fresh {
		spec = &Spec{Scope: scope}
	} else {
		spec = base.Clone()
		spec.Scope = scope
	}

	var err error
	if fresh || p.SetFilter() {
		spec.Filters = nil
		if fields := p.All("f[]"); len(fields) > 0 {
			operators := map[string]field.Operator{}
			values := map[string][]string{}
			for _, f := range fields {
				if op, ok := p.operatorFor(f); ok {
					operators[f] = op
				}
				values[f] = p.valuesFor(f)
			}
			err = AddFilters(spec, av, fields, operators, values)
		} else {
			for _, def := range av.Ordered() {
				if expr := p.Get(def.Field); expr != "" {
					if e := AddShortFilter(spec, av, def.Field, expr); e != nil && err == nil {
						err = e
					}
				}
			}
		}
		if fresh && !p.SetFilter() && len(spec.Filters) == 0 {
			ApplyDefault(spec)
		}
	}

	if p.Has("sort") {
		spec.SetSort(ParseSortParam(p.Get("sort")))
	}
	if p.Has("group_by") {
		spec.GroupBy = p.Get("group_by")
	}
	if cols := p.All("c[]"); len(cols) > 0 {
		spec.Columns = cols
	}
	if totals := p.All("t[]"); len(totals) > 0 {
		spec.Totals = totals
	}

	return spec, err
}

// ParseSortParam parses "field,field:desc,..." into sort criteria.
func ParseSortParam(s string) []SortCriterion {
	var out []SortCriterion
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name, dir, _ := strings.Cut(token, ":")
		out = append(out, SortCriterion{Field: name, Descending: dir == "desc"})
	}
	return out
}

// FormatSortParam is the inverse of ParseSortParam.
func FormatSortParam(criteria []SortCriterion) string {
	var parts []string
	for _, c := range criteria {
		if c.Descending {
			parts = append(parts, c.Field+":desc")
		} else {
			parts = append(parts, c.Field)
		}
	}
	return strings.Join(parts, ",")
}
