package modes

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"houndgrip/internal/ui/input/types"
)

// TextInputMode is a base for modes that accept text input
type TextInputMode struct {
	mode      types.Mode
	name      string
	prompt    string
	textInput *textinput.Model
}

func NewTextInputMode(mode types.Mode, name, prompt string, ti *textinput.Model) TextInputMode {
	return TextInputMode{
		mode:      mode,
		name:      name,
		prompt:    prompt,
		textInput: ti,
	}
}

func (m TextInputMode) Name() string {
	return m.name
}

// Prompt is the label shown before the input
func (m TextInputMode) Prompt() string {
	return m.prompt
}

// Enter prefills the input with the value being edited
func (m TextInputMode) Enter(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Reset()
		m.textInput.Prompt = "" // Prompt is handled in the UI layer
		m.textInput.SetValue(ctx.Value(m.mode))
		m.textInput.CursorEnd()
		m.textInput.Focus()
	}
	return nil
}

func (m TextInputMode) Exit(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Blur()
		m.textInput.Reset()
	}
	return nil
}

func (m TextInputMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "esc":
		return []types.Action{
			types.CancelTextAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "enter":
		text := ""
		if m.textInput != nil {
			text = m.textInput.Value()
		}
		return []types.Action{
			types.SubmitTextAction{Text: text, Mode: m.mode},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	default:
		// Let the main handler update the text input
		return nil, false
	}
}

// NewQueryMode edits the search pattern
func NewQueryMode(ti *textinput.Model) *TextInputMode {
	m := NewTextInputMode(types.ModeQuery, "query", "Search: ", ti)
	return &m
}

// NewFilesMode edits the server-side file path pattern
func NewFilesMode(ti *textinput.Model) *TextInputMode {
	m := NewTextInputMode(types.ModeFiles, "files", "File path: ", ti)
	return &m
}

// NewExcludeFilesMode edits the server-side excluded path pattern
func NewExcludeFilesMode(ti *textinput.Model) *TextInputMode {
	m := NewTextInputMode(types.ModeExcludeFiles, "exclude", "Exclude path: ", ti)
	return &m
}

// NewFilterIncludeMode edits the local include filter over loaded files
func NewFilterIncludeMode(ti *textinput.Model) *TextInputMode {
	m := NewTextInputMode(types.ModeFilterInclude, "filter", "Filter files: ", ti)
	return &m
}

// NewFilterExcludeMode edits the local exclude filter over loaded files
func NewFilterExcludeMode(ti *textinput.Model) *TextInputMode {
	m := NewTextInputMode(types.ModeFilterExclude, "filter-exclude", "Hide files: ", ti)
	return &m
}
