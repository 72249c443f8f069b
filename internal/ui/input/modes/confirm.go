package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"houndgrip/internal/ui/input/types"
)

// ConfirmMode asks before dropping a whole repository from the results
type ConfirmMode struct {
	repo string
}

func NewConfirmMode() *ConfirmMode {
	return &ConfirmMode{}
}

func (m *ConfirmMode) Name() string {
	return "delete-confirm"
}

// Target is the repository awaiting confirmation
func (m *ConfirmMode) Target() string {
	return m.repo
}

func (m *ConfirmMode) Enter(ctx types.Context) []types.Action {
	m.repo = ctx.CurrentRepo()
	return nil
}

func (m *ConfirmMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *ConfirmMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "esc", "n", "N":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
	case "y", "Y":
		return []types.Action{
			types.DeleteRepoAction{Repo: m.repo},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	}

	// swallow everything else while the prompt is up
	return nil, true
}
