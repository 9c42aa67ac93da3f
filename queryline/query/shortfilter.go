package query

import (
	"sort"
	"strings"

	"github.com/queryline/queryline/queryline/field"
)

// ParseShort parses the single-string filter form "[prefix]value[|value...]"
// for a field of the given type. The longest legal operator prefix wins; an
// expression with no operator prefix defaults to "=" with pipe-separated
// values. A prefix with no remainder yields the blank value list [""].
func ParseShort(t field.Type, expression string) (field.Operator, []string) {
	ops := t.Operators()
	sort.Slice(ops, func(i, j int) bool {
		if len(ops[i]) != len(ops[j]) {
			return len(ops[i]) > len(ops[j])
		}
		return ops[i] > ops[j]
	})

	for _, op := range ops {
		rest, ok := strings.CutPrefix(expression, string(op))
		if !ok {
			continue
		}
		if rest == "" {
			return op, []string{""}
		}
		return op, strings.Split(rest, "|")
	}
	return field.OpEquals, strings.Split(expression, "|")
}
