package query

import (
	multierror "github.com/hashicorp/go-multierror"

	qlerrors "github.com/queryline/queryline/queryline/errors"
	"github.com/queryline/queryline/queryline/field"
)

// AddFilter installs a canonical filter after checking the field is available
// and the operator is legal for its type. Unknown fields are rejected and
// illegal operators are validation errors; the spec keeps its other filters
// either way so they can be re-displayed.
func AddFilter(spec *Spec, av *Available, fieldName string, op field.Operator, values []string) error {
	def, ok := av.Get(fieldName)
	if !ok {
		return qlerrors.UnknownField(fieldName)
	}
	if !def.Type.Allows(op) {
		return qlerrors.IllegalOperator(fieldName, string(op))
	}
	if values == nil {
		values = []string{""}
	}
	spec.SetFilter(Filter{Field: fieldName, Operator: op, Values: values})
	return nil
}

// AddShortFilter installs a filter from the single-string expression form.
func AddShortFilter(spec *Spec, av *Available, fieldName, expression string) error {
	def, ok := av.Get(fieldName)
	if !ok {
		return qlerrors.UnknownField(fieldName)
	}
	op, values := ParseShort(def.Type, expression)
	return AddFilter(spec, av, fieldName, op, values)
}

// AddFilters installs filters from the explicit three-parallel-array form.
// Field entries without an operator are advisory and dropped, not errors.
func AddFilters(spec *Spec, av *Available, fields []string, operators map[string]field.Operator, values map[string][]string) error {
	var result *multierror.Error
	for _, f := range fields {
		op, ok := operators[f]
		if !ok || op == "" {
			continue
		}
		if err := AddFilter(spec, av, f, op, values[f]); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// ApplyDefault installs the default filter on a brand-new spec with no
// submitted filters: open issues. Re-normalizing an existing spec must not
// call this.
func ApplyDefault(spec *Spec) {
	if len(spec.Filters) == 0 {
		spec.Filters = append(spec.Filters, Filter{
			Field:    "status_id",
			Operator: field.OpOpen,
			Values:   []string{""},
		})
	}
}

// Validate checks every filter's values against its field type. All field
// errors are collected so each can be rendered inline; any error aborts
// compilation for the whole spec.
func Validate(spec *Spec, av *Available) error {
	var result *multierror.Error
	for _, f := range spec.Filters {
		def, ok := av.Get(f.Field)
		if !ok {
			result = multierror.Append(result, qlerrors.UnknownField(f.Field))
			continue
		}
		if !def.Type.Allows(f.Operator) {
			result = multierror.Append(result, qlerrors.IllegalOperator(f.Field, string(f.Operator)))
			continue
		}
		if err := ValidateFilterValues(def, f); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
