package ui

import (
	"houndgrip/internal/ui/input/types"
	"houndgrip/internal/ui/views"
)

// modelContext exposes the model state the input modes read
type modelContext struct {
	m *Model
}

func (c modelContext) current() views.Row {
	if c.m.cursor < 0 || c.m.cursor >= len(c.m.rows) {
		return views.Row{}
	}
	return c.m.rows[c.m.cursor]
}

func (c modelContext) CurrentKind() types.RowKind {
	return c.current().Kind
}

func (c modelContext) CurrentRepo() string {
	return c.current().Repo
}

func (c modelContext) CurrentFile() string {
	return c.current().File
}

func (c modelContext) Value(mode types.Mode) string {
	switch mode {
	case types.ModeQuery:
		return c.m.params.Query
	case types.ModeFiles:
		return c.m.params.Files
	case types.ModeExcludeFiles:
		return c.m.params.ExcludeFiles
	case types.ModeFilterInclude:
		return c.m.filter.Include
	case types.ModeFilterExclude:
		return c.m.filter.Exclude
	}
	return ""
}

func (c modelContext) RepoIDs() []string {
	return c.m.repoIDs
}

func (c modelContext) SelectedRepos() []string {
	return c.m.params.Repos
}
