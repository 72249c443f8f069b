package modes

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"houndgrip/internal/ui/input/types"
)

// RepoPickerMode selects repositories to search, narrowing the list by
// fuzzy matching what is typed.
type RepoPickerMode struct {
	TextInputMode
	all      []string
	selected map[string]bool
	matches  []fuzzy.Match
	cursor   int
}

func NewRepoPickerMode(ti *textinput.Model) *RepoPickerMode {
	return &RepoPickerMode{
		TextInputMode: NewTextInputMode(types.ModeRepos, "repos", "Repos: ", ti),
		selected:      make(map[string]bool),
	}
}

func (m *RepoPickerMode) Enter(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Reset()
		m.textInput.Prompt = ""
		m.textInput.Focus()
	}
	m.all = ctx.RepoIDs()
	m.selected = make(map[string]bool)
	for _, r := range ctx.SelectedRepos() {
		m.selected[r] = true
	}
	m.TextChanged("")
	return nil
}

// TextChanged re-ranks the list for the new pattern
func (m *RepoPickerMode) TextChanged(text string) {
	if text == "" {
		m.matches = make([]fuzzy.Match, len(m.all))
		for i, id := range m.all {
			m.matches[i] = fuzzy.Match{Str: id, Index: i}
		}
	} else {
		m.matches = fuzzy.Find(text, m.all)
	}
	if m.cursor >= len(m.matches) {
		m.cursor = len(m.matches) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *RepoPickerMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "esc":
		return []types.Action{
			types.CancelTextAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "enter":
		return []types.Action{
			types.SubmitReposAction{Repos: m.Selected()},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return nil, true
	case "down", "ctrl+n":
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}
		return nil, true
	case "tab":
		if m.cursor < len(m.matches) {
			id := m.matches[m.cursor].Str
			m.selected[id] = !m.selected[id]
		}
		return nil, true
	case "ctrl+a":
		// toggle every visible entry
		all := true
		for _, mt := range m.matches {
			all = all && m.selected[mt.Str]
		}
		for _, mt := range m.matches {
			m.selected[mt.Str] = !all
		}
		return nil, true
	}
	return nil, false
}

// Selected lists chosen repos in catalog order
func (m *RepoPickerMode) Selected() []string {
	out := make([]string, 0, len(m.selected))
	for _, id := range m.all {
		if m.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// Matches is the ranked list currently shown
func (m *RepoPickerMode) Matches() []fuzzy.Match {
	return m.matches
}

func (m *RepoPickerMode) Cursor() int {
	return m.cursor
}

func (m *RepoPickerMode) IsSelected(id string) bool {
	return m.selected[id]
}
