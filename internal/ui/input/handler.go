package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"houndgrip/internal/ui/input/modes"
	"houndgrip/internal/ui/input/types"
)

type Handler struct {
	currentMode types.Mode
	modes       map[types.Mode]types.ModeHandler
	textInput   *textinput.Model // Shared text input for text modes
	picker      *modes.RepoPickerMode
	confirm     *modes.ConfirmMode
}

func New() *Handler {
	ti := textinput.New()

	h := &Handler{
		currentMode: types.ModeNormal,
		textInput:   &ti,
		modes:       make(map[types.Mode]types.ModeHandler),
		picker:      modes.NewRepoPickerMode(&ti),
		confirm:     modes.NewConfirmMode(),
	}

	// Register all mode handlers
	h.modes[types.ModeNormal] = modes.NewNormalMode()
	h.modes[types.ModeQuery] = modes.NewQueryMode(h.textInput)
	h.modes[types.ModeFiles] = modes.NewFilesMode(h.textInput)
	h.modes[types.ModeExcludeFiles] = modes.NewExcludeFilesMode(h.textInput)
	h.modes[types.ModeFilterInclude] = modes.NewFilterIncludeMode(h.textInput)
	h.modes[types.ModeFilterExclude] = modes.NewFilterExcludeMode(h.textInput)
	h.modes[types.ModeRepos] = h.picker
	h.modes[types.ModeDeleteConfirm] = h.confirm

	return h
}

// HandleKey routes a key to the current mode, performing mode changes itself
// and returning the remaining actions for the model.
func (h *Handler) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, tea.Cmd) {
	handler := h.modes[h.currentMode]
	if handler == nil {
		return nil, nil
	}

	actions, consumed := handler.HandleKey(msg, ctx)

	if !consumed && !h.currentMode.IsText() {
		return nil, nil
	}

	var cmd tea.Cmd
	var allActions []types.Action

	for _, action := range actions {
		changeMode, ok := action.(types.ChangeModeAction)
		if !ok {
			allActions = append(allActions, action)
			continue
		}

		allActions = append(allActions, handler.Exit(ctx)...)
		h.currentMode = changeMode.Mode
		handler = h.modes[h.currentMode]
		if handler != nil {
			allActions = append(allActions, handler.Enter(ctx)...)
		}
		if h.currentMode.IsText() {
			cmd = textinput.Blink
		}
	}

	// Keys a text mode did not claim go to the input itself
	if h.currentMode.IsText() && !consumed {
		var textCmd tea.Cmd
		*h.textInput, textCmd = h.textInput.Update(msg)
		cmd = textCmd
		if w, ok := handler.(types.TextWatcher); ok {
			w.TextChanged(h.textInput.Value())
		}
		allActions = append(allActions, types.UpdateTextAction{Text: h.textInput.Value()})
	}

	return allActions, cmd
}

func (h *Handler) CurrentMode() types.Mode {
	return h.currentMode
}

// ModeName is the display name of the current mode
func (h *Handler) ModeName() string {
	if m := h.modes[h.currentMode]; m != nil {
		return m.Name()
	}
	return ""
}

// Prompt is the label for the current text mode
func (h *Handler) Prompt() string {
	if p, ok := h.modes[h.currentMode].(interface{ Prompt() string }); ok {
		return p.Prompt()
	}
	return ""
}

func (h *Handler) TextInput() *textinput.Model {
	if h.currentMode.IsText() {
		return h.textInput
	}
	return nil
}

// Picker exposes the repo picker state for rendering
func (h *Handler) Picker() *modes.RepoPickerMode {
	return h.picker
}

// ConfirmTarget is the repository a pending delete confirmation refers to
func (h *Handler) ConfirmTarget() string {
	return h.confirm.Target()
}

func (h *Handler) Reset() {
	h.currentMode = types.ModeNormal
	h.textInput.Reset()
	h.textInput.Blur()
}

// Update handles non-keyboard messages for text input
func (h *Handler) Update(msg tea.Msg) tea.Cmd {
	if h.currentMode.IsText() {
		var cmd tea.Cmd
		*h.textInput, cmd = h.textInput.Update(msg)
		return cmd
	}
	return nil
}
