// Package coalesce merges the per-match context windows of a file into
// non-overlapping display blocks.
package coalesce

import (
	"regexp"

	"houndgrip/internal/domain"
)

// Line is one displayable line of a file
type Line struct {
	Number  int
	Content string
	Match   bool
}

// Block is a run of consecutive lines
type Block []Line

// First returns the first line number of the block
func (b Block) First() int { return b[0].Number }

// Last returns the last line number of the block
func (b Block) Last() int { return b[len(b)-1].Number }

// MatchToLines expands a match into its before-context, the matched line and its after-context
func MatchToLines(m domain.Match) Block {
	lines := make(Block, 0, len(m.Before)+1+len(m.After))
	base := m.LineNumber
	nBefore := len(m.Before)

	for i, content := range m.Before {
		lines = append(lines, Line{Number: base - nBefore + i, Content: content})
	}
	lines = append(lines, Line{Number: base, Content: m.Line, Match: true})
	for i, content := range m.After {
		lines = append(lines, Line{Number: base + i + 1, Content: content})
	}
	return lines
}

// Coalesce merges overlapping match windows into blocks.
// Matches must be ordered by non-decreasing line number; the input is not re-sorted.
// A block that starts after the last line of the block being built begins a new
// block. Otherwise its new lines are appended, and a match center that falls on an
// already emitted line marks that line as matched.
func Coalesce(matches []domain.Match) []Block {
	var (
		res     []Block
		current Block
		maxLine = -1
	)

	for _, m := range matches {
		block := MatchToLines(m)

		if block.First() > maxLine {
			if current != nil {
				res = append(res, current)
			}
			current = block
			maxLine = block.Last()
			continue
		}

		for _, line := range block {
			if line.Number > maxLine {
				current = append(current, line)
				maxLine = line.Number
				continue
			}
			if !line.Match {
				continue
			}
			// out-of-order input can point before the block start
			if ix := len(current) - 1 - (maxLine - line.Number); ix >= 0 {
				current[ix].Match = true
			}
		}
	}

	if current != nil {
		res = append(res, current)
	}
	return res
}

// Span is a piece of a line, either matched text or the plain text around it
type Span struct {
	Text  string
	Match bool
}

// Highlight splits content into spans around every match of re.
// Empty matches are ignored so a pattern like "x*" cannot produce empty spans.
func Highlight(content string, re *regexp.Regexp) []Span {
	if re == nil || content == "" {
		return []Span{{Text: content}}
	}

	var spans []Span
	last := 0
	for _, loc := range re.FindAllStringIndex(content, -1) {
		if loc[0] == loc[1] {
			continue
		}
		if loc[0] > last {
			spans = append(spans, Span{Text: content[last:loc[0]]})
		}
		spans = append(spans, Span{Text: content[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(content) {
		spans = append(spans, Span{Text: content[last:]})
	}
	if spans == nil {
		spans = []Span{{Text: content}}
	}
	return spans
}
