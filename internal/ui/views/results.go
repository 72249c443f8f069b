package views

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"houndgrip/internal/coalesce"
	"houndgrip/internal/domain"
	"houndgrip/internal/ui/input/types"
)

// Row is one navigable entry in the result list
type Row struct {
	Kind types.RowKind
	Repo string
	File string
}

// BuildRows flattens results into a header per repo, its files unless the
// repo is collapsed, and a load-more row when the server holds more files.
func BuildRows(results []*domain.RepoResult, collapsed map[string]bool) []Row {
	var rows []Row
	for _, r := range results {
		rows = append(rows, Row{Kind: types.RowRepo, Repo: r.Repo})
		if collapsed[r.Repo] {
			continue
		}
		for _, fm := range r.Matches {
			rows = append(rows, Row{Kind: types.RowFile, Repo: r.Repo, File: fm.Filename})
		}
		if r.HasMore() {
			rows = append(rows, Row{Kind: types.RowMore, Repo: r.Repo})
		}
	}
	return rows
}

// ResultRenderer draws result rows
type ResultRenderer struct {
	styles    *Styles
	highlight bool
}

func NewResultRenderer(styles *Styles, highlight bool) *ResultRenderer {
	return &ResultRenderer{styles: styles, highlight: highlight}
}

// ResultList is the rendered list plus the first line of each row, so a
// viewport can keep the cursor row on screen
type ResultList struct {
	Content string
	Offsets []int
}

// RenderList renders rows; name maps a repo id to its display name and re,
// when set, marks the matched text.
func (rr *ResultRenderer) RenderList(rows []Row, results []*domain.RepoResult, name func(string) string, cursor int, re *regexp.Regexp) ResultList {
	byRepo := make(map[string]*domain.RepoResult, len(results))
	for _, r := range results {
		byRepo[r.Repo] = r
	}

	var b strings.Builder
	offsets := make([]int, len(rows))
	line := 0
	for i, row := range rows {
		offsets[i] = line
		res := byRepo[row.Repo]
		if res == nil {
			continue
		}

		var text string
		switch row.Kind {
		case types.RowRepo:
			text = rr.renderRepoHeader(res, name(row.Repo))
		case types.RowFile:
			text = rr.renderFile(res, row.File, re)
		case types.RowMore:
			text = rr.styles.More.Render(fmt.Sprintf("  Load all %s matches in %s", humanize.Comma(int64(res.FilesWithMatch)), name(row.Repo)))
		}

		if i == cursor {
			text = markCursor(text, rr.styles)
		}
		b.WriteString(text)
		b.WriteString("\n")
		line += strings.Count(text, "\n") + 1
	}
	return ResultList{Content: strings.TrimSuffix(b.String(), "\n"), Offsets: offsets}
}

// markCursor puts a pointer on the row's first line
func markCursor(text string, styles *Styles) string {
	first, rest, found := strings.Cut(text, "\n")
	first = styles.SelectionBg.Render("▶" + strings.TrimPrefix(first, " "))
	if found {
		return first + "\n" + rest
	}
	return first
}

func (rr *ResultRenderer) renderRepoHeader(res *domain.RepoResult, display string) string {
	count := fmt.Sprintf("%s of %s files", humanize.Comma(int64(len(res.Matches))), humanize.Comma(int64(res.FilesWithMatch)))
	return " " + rr.styles.Repo.Render(display) + "  " + rr.styles.Dim.Render(count)
}

func (rr *ResultRenderer) renderFile(res *domain.RepoResult, filename string, re *regexp.Regexp) string {
	for _, fm := range res.Matches {
		if fm.Filename == filename {
			return "   " + rr.styles.File.Render(filename) + "\n" + rr.RenderBlocks(fm.Matches, re, "     ")
		}
	}
	return ""
}

// RenderBlocks renders merged context windows, numbered, with a gap marker between blocks
func (rr *ResultRenderer) RenderBlocks(matches []domain.Match, re *regexp.Regexp, indent string) string {
	blocks := coalesce.Coalesce(matches)
	width := 1
	for _, blk := range blocks {
		if w := len(strconv.Itoa(blk.Last())); w > width {
			width = w
		}
	}

	var lines []string
	for i, blk := range blocks {
		if i > 0 {
			lines = append(lines, indent+rr.styles.Dim.Render(strings.Repeat(" ", width)+" …"))
		}
		for _, l := range blk {
			num := rr.styles.LineNumber.Render(fmt.Sprintf("%*d", width, l.Number))
			lines = append(lines, indent+num+" "+rr.renderContent(l, re))
		}
	}
	return strings.Join(lines, "\n")
}

func (rr *ResultRenderer) renderContent(l coalesce.Line, re *regexp.Regexp) string {
	content := strings.ReplaceAll(l.Content, "\t", "    ")
	if !l.Match {
		return rr.styles.Dim.Render(content)
	}
	if !rr.highlight || re == nil {
		return rr.styles.MatchLine.Render(content)
	}
	var b strings.Builder
	for _, s := range coalesce.Highlight(content, re) {
		if s.Match {
			b.WriteString(rr.styles.Highlight.Render(s.Text))
		} else {
			b.WriteString(rr.styles.MatchLine.Render(s.Text))
		}
	}
	return b.String()
}

// RenderStats formats the completion line: client and server time plus files opened
func RenderStats(stats domain.Stats, repos, files int) string {
	return fmt.Sprintf("%s files in %s repos · %sms total, %sms on server, %s files opened",
		humanize.Comma(int64(files)),
		humanize.Comma(int64(repos)),
		humanize.Comma(stats.Total.Milliseconds()),
		humanize.Comma(stats.Server.Milliseconds()),
		humanize.Comma(int64(stats.FilesOpened)),
	)
}
