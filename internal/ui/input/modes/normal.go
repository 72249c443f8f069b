package modes

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"houndgrip/internal/ui/input/types"
)

type NormalMode struct {
	lastKeyWasG bool
	lastGTime   time.Time
}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case tea.KeyUp:
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case tea.KeyDown:
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case tea.KeyPgUp:
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true

	case tea.KeyPgDown:
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true

	case tea.KeyHome:
		return []types.Action{types.NavigateAction{Direction: "home"}}, true

	case tea.KeyEnd:
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case tea.KeyTab:
		return []types.Action{types.NavigateAction{Direction: "nextrepo"}}, true

	case tea.KeyShiftTab:
		return []types.Action{types.NavigateAction{Direction: "prevrepo"}}, true

	case tea.KeyEnter:
		switch ctx.CurrentKind() {
		case types.RowFile:
			return []types.Action{types.ShowFileAction{Repo: ctx.CurrentRepo(), File: ctx.CurrentFile()}}, true
		case types.RowMore:
			return []types.Action{types.LoadMoreAction{Repo: ctx.CurrentRepo()}}, true
		case types.RowRepo:
			return []types.Action{types.ToggleRepoAction{Repo: ctx.CurrentRepo()}}, true
		}
		return nil, false
	}

	key := msg.String()
	if key != "g" {
		m.lastKeyWasG = false
	}

	switch key {
	case "j":
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case "k":
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case "g":
		// gg jumps to the top
		if m.lastKeyWasG && time.Since(m.lastGTime) < 500*time.Millisecond {
			m.lastKeyWasG = false
			return []types.Action{types.NavigateAction{Direction: "home"}}, true
		}
		m.lastKeyWasG = true
		m.lastGTime = time.Now()
		return nil, true

	case "G":
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case "/":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeQuery}}, true

	case "f":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFiles}}, true

	case "x":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeExcludeFiles}}, true

	case "r":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeRepos}}, true

	case "F":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFilterInclude}}, true

	case "X":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFilterExclude}}, true

	case "c":
		return []types.Action{types.ClearFilterAction{}}, true

	case "i":
		return []types.Action{types.ToggleIgnoreCaseAction{}}, true

	case "a":
		return []types.Action{types.ToggleAdvancedAction{}}, true

	case "m":
		if ctx.CurrentRepo() != "" {
			return []types.Action{types.LoadMoreAction{Repo: ctx.CurrentRepo()}}, true
		}
		return nil, true

	case "d":
		switch ctx.CurrentKind() {
		case types.RowFile:
			return []types.Action{types.DeleteFileAction{Repo: ctx.CurrentRepo(), File: ctx.CurrentFile()}}, true
		case types.RowRepo:
			return []types.Action{types.ChangeModeAction{Mode: types.ModeDeleteConfirm}}, true
		}
		return nil, true

	case "D":
		if ctx.CurrentRepo() != "" {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeDeleteConfirm}}, true
		}
		return nil, true

	case "o":
		if ctx.CurrentRepo() != "" {
			return []types.Action{types.OpenLinkAction{Repo: ctx.CurrentRepo(), File: ctx.CurrentFile()}}, true
		}
		return nil, true

	case "s":
		return []types.Action{types.ShareAction{}}, true

	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true

	case "q":
		return []types.Action{types.QuitAction{Force: false}}, true
	}

	return nil, false
}
