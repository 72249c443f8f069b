package coalesce

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houndgrip/internal/domain"
)

// match builds a match centered on n with ctx lines of context on each side
func match(n, ctx int) domain.Match {
	m := domain.Match{LineNumber: n, Line: lineText(n)}
	for i := n - ctx; i < n; i++ {
		m.Before = append(m.Before, lineText(i))
	}
	for i := n + 1; i <= n+ctx; i++ {
		m.After = append(m.After, lineText(i))
	}
	return m
}

func lineText(n int) string {
	return "line " + string(rune('a'+n%26))
}

func numbers(b Block) []int {
	var ns []int
	for _, l := range b {
		ns = append(ns, l.Number)
	}
	return ns
}

func matched(b Block) []int {
	var ns []int
	for _, l := range b {
		if l.Match {
			ns = append(ns, l.Number)
		}
	}
	return ns
}

func TestMatchToLines(t *testing.T) {
	lines := MatchToLines(domain.Match{
		LineNumber: 10,
		Line:       "center",
		Before:     []string{"b1", "b2"},
		After:      []string{"a1"},
	})

	require.Len(t, lines, 4)
	assert.Equal(t, Line{Number: 8, Content: "b1"}, lines[0])
	assert.Equal(t, Line{Number: 9, Content: "b2"}, lines[1])
	assert.Equal(t, Line{Number: 10, Content: "center", Match: true}, lines[2])
	assert.Equal(t, Line{Number: 11, Content: "a1"}, lines[3])
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name        string
		matches     []domain.Match
		wantNumbers [][]int
		wantMatched [][]int
	}{
		{
			name:        "empty",
			matches:     nil,
			wantNumbers: nil,
		},
		{
			name:        "overlapping windows merge",
			matches:     []domain.Match{match(10, 1), match(11, 1)},
			wantNumbers: [][]int{{9, 10, 11, 12}},
			wantMatched: [][]int{{10, 11}},
		},
		{
			name:        "distant windows stay apart",
			matches:     []domain.Match{match(5, 1), match(20, 1)},
			wantNumbers: [][]int{{4, 5, 6}, {19, 20, 21}},
			wantMatched: [][]int{{5}, {20}},
		},
		{
			name:        "shared edge line merges",
			matches:     []domain.Match{match(5, 2), match(9, 2)},
			wantNumbers: [][]int{{3, 4, 5, 6, 7, 8, 9, 10, 11}},
			wantMatched: [][]int{{5, 9}},
		},
		{
			name:        "adjacent windows without a shared line stay apart",
			matches:     []domain.Match{match(5, 1), match(8, 1)},
			wantNumbers: [][]int{{4, 5, 6}, {7, 8, 9}},
			wantMatched: [][]int{{5}, {8}},
		},
		{
			name:        "chain of overlaps",
			matches:     []domain.Match{match(3, 2), match(6, 2), match(9, 2), match(30, 2)},
			wantNumbers: [][]int{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, {28, 29, 30, 31, 32}},
			wantMatched: [][]int{{3, 6, 9}, {30}},
		},
		{
			name:        "window fully inside previous block",
			matches:     []domain.Match{match(10, 3), match(11, 0)},
			wantNumbers: [][]int{{7, 8, 9, 10, 11, 12, 13}},
			wantMatched: [][]int{{10, 11}},
		},
		{
			name:        "no context",
			matches:     []domain.Match{match(1, 0), match(2, 0)},
			wantNumbers: [][]int{{1}, {2}},
			wantMatched: [][]int{{1}, {2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Coalesce(tt.matches)
			require.Len(t, blocks, len(tt.wantNumbers))
			for i, b := range blocks {
				assert.Equal(t, tt.wantNumbers[i], numbers(b), "block %d lines", i)
				assert.Equal(t, tt.wantMatched[i], matched(b), "block %d matches", i)
			}
		})
	}
}

func TestCoalesceBlocksAreDisjointAndCoverInput(t *testing.T) {
	var ms []domain.Match
	for _, n := range []int{2, 3, 7, 12, 13, 14, 40, 44, 90} {
		ms = append(ms, match(n, 2))
	}

	blocks := Coalesce(ms)

	want := map[int]bool{}
	for _, m := range ms {
		for _, l := range MatchToLines(m) {
			want[l.Number] = true
		}
	}

	got := map[int]bool{}
	prevLast := -1
	for _, b := range blocks {
		assert.Greater(t, b.First(), prevLast, "blocks must not overlap")
		prevLast = b.Last()
		for i, l := range b {
			assert.False(t, got[l.Number], "line %d appears twice", l.Number)
			got[l.Number] = true
			if i > 0 {
				assert.Equal(t, b[i-1].Number+1, l.Number, "block lines are contiguous")
			}
		}
	}
	assert.Equal(t, want, got)

	for _, m := range ms {
		found := false
		for _, b := range blocks {
			for _, l := range b {
				if l.Number == m.LineNumber {
					found = l.Match
				}
			}
		}
		assert.True(t, found, "line %d should be marked matched", m.LineNumber)
	}
}

func TestCoalesceDoesNotMutateInput(t *testing.T) {
	ms := []domain.Match{match(10, 1), match(11, 1)}
	first := Coalesce(ms)
	second := Coalesce(ms)

	assert.Equal(t, first, second)
	assert.Equal(t, match(10, 1), ms[0])
}

func TestHighlight(t *testing.T) {
	re := regexp.MustCompile("foo")

	spans := Highlight("a foo b foo", re)
	assert.Equal(t, []Span{
		{Text: "a "},
		{Text: "foo", Match: true},
		{Text: " b "},
		{Text: "foo", Match: true},
	}, spans)

	assert.Equal(t, []Span{{Text: "nothing"}}, Highlight("nothing", re))
	assert.Equal(t, []Span{{Text: "abc"}}, Highlight("abc", regexp.MustCompile("x*")))
	assert.Equal(t, []Span{{Text: "abc"}}, Highlight("abc", nil))
}
