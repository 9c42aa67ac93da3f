package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qlerrors "github.com/queryline/queryline/queryline/errors"
	"github.com/queryline/queryline/queryline/field"
	"github.com/queryline/queryline/queryline/query"
)

func day(s string) time.Time {
	t, err := time.Parse(query.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	d, err := query.ParseDate("2011-10-12")
	require.NoError(t, err)
	assert.Equal(t, day("2011-10-12"), d)

	for _, bad := range []string{"2011-1-12", "12/10/2011", "2011-10-12 10:00", "abc", ""} {
		_, err := query.ParseDate(bad)
		assert.Error(t, err, bad)
		assert.True(t, qlerrors.IsKind(err, qlerrors.KindValidation), bad)
	}
}

func TestParseIntFloat(t *testing.T) {
	n, err := query.ParseInt("-42")
	require.NoError(t, err)
	assert.Equal(t, int64(-42), n)

	_, err = query.ParseInt("4.2")
	assert.Error(t, err)
	_, err = query.ParseInt("4a")
	assert.Error(t, err)

	f, err := query.ParseFloat("+30.5")
	require.NoError(t, err)
	assert.Equal(t, 30.5, f)
	f, err = query.ParseFloat("30.")
	require.NoError(t, err)
	assert.Equal(t, 30.0, f)

	_, err = query.ParseFloat("30,5")
	assert.Error(t, err)
	_, err = query.ParseFloat(".5")
	assert.Error(t, err)
}

// Anchored on Wednesday 2011-10-12; week starts Monday.
func dctx() query.DateContext {
	return query.NewDateContext(time.Date(2011, 10, 12, 15, 4, 5, 0, time.UTC), time.Monday)
}

func TestWindowAbsolute(t *testing.T) {
	c := dctx()

	from, to, err := c.Window(field.OpEquals, []string{"2011-10-12"})
	require.NoError(t, err)
	assert.Equal(t, day("2011-10-12"), *from)
	assert.Equal(t, day("2011-10-12"), *to)

	from, to, err = c.Window(field.OpGte, []string{"2011-10-12"})
	require.NoError(t, err)
	assert.Equal(t, day("2011-10-12"), *from)
	assert.Nil(t, to)

	from, to, err = c.Window(field.OpLte, []string{"2011-10-12"})
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Equal(t, day("2011-10-12"), *to)

	from, to, err = c.Window(field.OpBetween, []string{"2011-10-01", "2011-10-31"})
	require.NoError(t, err)
	assert.Equal(t, day("2011-10-01"), *from)
	assert.Equal(t, day("2011-10-31"), *to)

	_, _, err = c.Window(field.OpBetween, []string{"2011-10-01"})
	assert.Error(t, err)
	_, _, err = c.Window(field.OpEquals, nil)
	assert.Error(t, err)
}

func TestWindowRelative(t *testing.T) {
	c := dctx()

	cases := []struct {
		op       field.Operator
		values   []string
		from, to string // "" = open
	}{
		{field.OpToday, nil, "2011-10-12", "2011-10-12"},
		{field.OpThisWeek, nil, "2011-10-10", "2011-10-16"},
		{field.OpAgoDays, []string{"2"}, "2011-10-10", "2011-10-10"},
		{field.OpAgoLessThan, []string{"2"}, "2011-10-10", "2011-10-12"},
		{field.OpAgoMoreThan, []string{"2"}, "", "2011-10-10"},
		{field.OpInDays, []string{"2"}, "2011-10-14", "2011-10-14"},
		{field.OpInLessThan, []string{"2"}, "2011-10-12", "2011-10-14"},
		{field.OpInMoreThan, []string{"2"}, "2011-10-14", ""},
	}
	for _, tc := range cases {
		from, to, err := c.Window(tc.op, tc.values)
		require.NoError(t, err, string(tc.op))
		if tc.from == "" {
			assert.Nil(t, from, string(tc.op))
		} else {
			require.NotNil(t, from, string(tc.op))
			assert.Equal(t, day(tc.from), *from, string(tc.op))
		}
		if tc.to == "" {
			assert.Nil(t, to, string(tc.op))
		} else {
			require.NotNil(t, to, string(tc.op))
			assert.Equal(t, day(tc.to), *to, string(tc.op))
		}
	}
}

func TestWindowWeekStart(t *testing.T) {
	// Same Wednesday, week starting Sunday.
	c := query.NewDateContext(time.Date(2011, 10, 12, 0, 0, 0, 0, time.UTC), time.Sunday)
	from, to, err := c.Window(field.OpThisWeek, nil)
	require.NoError(t, err)
	assert.Equal(t, day("2011-10-09"), *from)
	assert.Equal(t, day("2011-10-15"), *to)
}

func TestWindowMissingOffset(t *testing.T) {
	c := dctx()
	_, _, err := c.Window(field.OpAgoDays, nil)
	assert.Error(t, err)
	_, _, err = c.Window(field.OpAgoDays, []string{"x"})
	assert.Error(t, err)
}

func TestValidateFilterValues(t *testing.T) {
	intDef := query.FilterDef{Field: "done_ratio", Type: field.Integer}
	require.NoError(t, query.ValidateFilterValues(intDef, query.Filter{
		Field: "done_ratio", Operator: field.OpGte, Values: []string{"30"},
	}))
	err := query.ValidateFilterValues(intDef, query.Filter{
		Field: "done_ratio", Operator: field.OpGte, Values: []string{"abc"},
	})
	require.Error(t, err)
	assert.True(t, qlerrors.IsKind(err, qlerrors.KindValidation))

	// operators without values pass with blank values
	require.NoError(t, query.ValidateFilterValues(intDef, query.Filter{
		Field: "done_ratio", Operator: field.OpNone, Values: []string{""},
	}))

	// value-requiring operators reject all-blank values
	err = query.ValidateFilterValues(intDef, query.Filter{
		Field: "done_ratio", Operator: field.OpGte, Values: []string{""},
	})
	assert.Error(t, err)

	dateDef := query.FilterDef{Field: "due_date", Type: field.Date}
	require.NoError(t, query.ValidateFilterValues(dateDef, query.Filter{
		Field: "due_date", Operator: field.OpAgoLessThan, Values: []string{"7"},
	}))
	err = query.ValidateFilterValues(dateDef, query.Filter{
		Field: "due_date", Operator: field.OpEquals, Values: []string{"next week"},
	})
	assert.Error(t, err)
}
