package period

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Layouts(t *testing.T) {
	cases := []struct {
		in      string
		kind    Kind
		key     string
		sortKey int
	}{
		{"01-2025", Month, "2025-01", 202501},
		{"2025-01", Month, "2025-01", 202501},
		{"1/2025", Month, "2025-01", 202501},
		{"2025/12", Month, "2025-12", 202512},
		{"202503", Month, "2025-03", 202503},
		{"2025-Q2", Quarter, "2025-Q2", 20252},
		{"Q3-2025", Quarter, "2025-Q3", 20253},
		{"q4 2024", Quarter, "2024-Q4", 20244},
		{"2024 Q1", Quarter, "2024-Q1", 20241},
		{"2025", Year, "2025", 2025},
		{"2025-03-15", Month, "2025-03", 202503},
		{"mrt 2025", Month, "2025-03", 202503},
		{"Januari-2026", Month, "2026-01", 202601},
		{"oct. 2024", Month, "2024-10", 202410},
	}
	for _, c := range cases {
		p, err := Parse(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.kind, p.Kind, c.in)
		assert.Equal(t, c.key, p.Key, c.in)
		assert.Equal(t, c.sortKey, p.SortKey, c.in)
	}
}

func TestParse_Idempotent(t *testing.T) {
	for _, in := range []string{"01-2025", "Q1-2025", "2025", "202511"} {
		first, err := Parse(in)
		require.NoError(t, err)
		again, err := Parse(first.Key)
		require.NoError(t, err)
		assert.Equal(t, first, again, in)
	}

	a, err := Parse("01-2025")
	require.NoError(t, err)
	b, err := Parse("2025-01")
	require.NoError(t, err)
	assert.Equal(t, a.Key, b.Key)
	assert.Equal(t, a.SortKey, b.SortKey)
}

func TestParse_Unrecognized(t *testing.T) {
	for _, in := range []string{"", "13-2025", "2025-00", "Q5-2025", "week 12", "2025-02-30", "abc 2025", "12345"} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrUnrecognized), in)
	}
}

func TestToQuarter(t *testing.T) {
	for month, quarter := range map[int]int{1: 1, 3: 1, 4: 2, 6: 2, 7: 3, 9: 3, 10: 4, 12: 4} {
		q, ok := MonthOf(2025, month).ToQuarter()
		assert.True(t, ok)
		assert.Equal(t, quarter, q.Quarter)
		assert.Equal(t, Quarter, q.Kind)
	}

	q := QuarterOf(2025, 2)
	same, ok := q.ToQuarter()
	assert.True(t, ok)
	assert.Equal(t, q, same)

	y, _ := Parse("2025")
	_, ok = y.ToQuarter()
	assert.False(t, ok)
}

func TestOrdinal_MixedKinds(t *testing.T) {
	mar := MonthOf(2025, 3)
	q1 := QuarterOf(2025, 1)
	apr := MonthOf(2025, 4)
	dec24 := MonthOf(2024, 12)
	y24, _ := Parse("2024")

	assert.True(t, Less(mar, q1))
	assert.True(t, Less(q1, apr))
	assert.True(t, Less(dec24, y24))
	assert.True(t, Less(y24, MonthOf(2025, 1)))
}

func TestMonthNumber(t *testing.T) {
	for name, want := range map[string]int{"januari": 1, "Mrt.": 3, "mei": 5, "October": 10, "okt": 10} {
		got, ok := MonthNumber(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := MonthNumber("smarch")
	assert.False(t, ok)
}
