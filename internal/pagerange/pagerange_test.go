package pagerange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(from, to int) []int {
	out := []int{}
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		total int
		spec  string
		want  []int
	}{
		{"single and range", 20, "5,8-12", []int{1, 2, 3, 4, 6, 7, 13, 14, 15, 16, 17, 18, 19, 20}},
		{"empty spec keeps all", 7, "", seq(1, 7)},
		{"none keeps all", 7, "none", seq(1, 7)},
		{"reversed range removes nothing", 10, "3-1", seq(1, 10)},
		{"open start", 10, "-3", seq(4, 10)},
		{"open end", 10, "8-", seq(1, 7)},
		{"bare dash removes everything", 4, "-", []int{}},
		{"whitespace and empty tokens", 6, " 2 , ,  4 - 5 ,", []int{1, 3, 6}},
		{"duplicates collapse", 5, "2,2,1-2", []int{3, 4, 5}},
		{"out of range ignored", 3, "9,0", seq(1, 3)},
		{"zero pages", 0, "1", []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.total, tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	for _, spec := range []string{"abc", "1,x", "2-b", "1-2-3", "4.5"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Resolve(10, spec)
			assert.ErrorIs(t, err, ErrInvalidRangeSpec)
		})
	}
}

func TestResolve_SortedUniqueWithinBounds(t *testing.T) {
	got, err := Resolve(50, "10-20, 3, 45-, 30-25")
	require.NoError(t, err)
	for i, p := range got {
		assert.GreaterOrEqual(t, p, 1)
		assert.LessOrEqual(t, p, 50)
		if i > 0 {
			assert.Less(t, got[i-1], p)
		}
	}
	assert.Len(t, got, 50-11-1-6)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(""))
	assert.NoError(t, Validate("none"))
	assert.NoError(t, Validate("1, 3-5"))
	assert.ErrorIs(t, Validate("1;2"), ErrInvalidRangeSpec)
	assert.ErrorIs(t, Validate("pages 1"), ErrInvalidRangeSpec)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "a.pdf [All Pages]", Label("/tmp/x/a.pdf", "none"))
	assert.Equal(t, "a.pdf [All Pages]", Label("a.pdf", " "))
	assert.Equal(t, "a.pdf [Removing: 5, 8-12]", Label("dir/a.pdf", "5, 8-12"))
	assert.Equal(t, None, Normalize("  "))
	assert.Equal(t, "3", Normalize(" 3 "))
}
