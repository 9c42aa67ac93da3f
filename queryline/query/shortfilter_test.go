package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/queryline/queryline/queryline/field"
	"github.com/queryline/queryline/queryline/query"
)

func TestParseShort(t *testing.T) {
	cases := []struct {
		typ    field.Type
		expr   string
		op     field.Operator
		values []string
	}{
		// no prefix falls back to equals with pipe-separated values
		{field.Status, "7|3|4", field.OpEquals, []string{"7", "3", "4"}},
		{field.List, "1", field.OpEquals, []string{"1"}},
		// bare operator yields the blank value list
		{field.Status, "o", field.OpOpen, []string{""}},
		{field.Status, "c", field.OpClosed, []string{""}},
		{field.Status, "!", field.OpNot, []string{""}},
		{field.ListOptional, "*", field.OpAny, []string{""}},
		{field.ListOptional, "!*", field.OpNone, []string{""}},
		// negation with values
		{field.Status, "!3|4", field.OpNot, []string{"3", "4"}},
		// text operators
		{field.Text, "~recipe", field.OpContains, []string{"recipe"}},
		{field.Text, "!~recipe", field.OpNotContains, []string{"recipe"}},
		// numeric ranges: the longest operator prefix wins over "<=" / ">="
		{field.Float, "><10.5|20.5", field.OpBetween, []string{"10.5", "20.5"}},
		{field.Float, ">=10.5", field.OpGte, []string{"10.5"}},
		{field.Integer, "<=30", field.OpLte, []string{"30"}},
		// date operators, relative and absolute
		{field.Date, "=2011-10-12", field.OpEquals, []string{"2011-10-12"}},
		{field.Date, "2011-10-12", field.OpEquals, []string{"2011-10-12"}},
		{field.Date, "t", field.OpToday, []string{""}},
		{field.Date, "w", field.OpThisWeek, []string{""}},
		{field.Date, "t-2", field.OpAgoDays, []string{"2"}},
		{field.Date, ">t-7", field.OpAgoLessThan, []string{"7"}},
		{field.Date, "<t-30", field.OpAgoMoreThan, []string{"30"}},
		{field.Date, "t+3", field.OpInDays, []string{"3"}},
		{field.Date, ">t+3", field.OpInMoreThan, []string{"3"}},
		{field.Date, "<t+3", field.OpInLessThan, []string{"3"}},
	}
	for _, tc := range cases {
		op, values := query.ParseShort(tc.typ, tc.expr)
		assert.Equal(t, tc.op, op, tc.expr)
		assert.Equal(t, tc.values, values, tc.expr)
	}
}
