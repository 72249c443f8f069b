package types

import tea "github.com/charmbracelet/bubbletea"

// Mode represents an input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeQuery
	ModeFiles
	ModeExcludeFiles
	ModeFilterInclude
	ModeFilterExclude
	ModeRepos
	ModeDeleteConfirm
)

// IsText reports whether the mode edits the shared text input
func (m Mode) IsText() bool {
	switch m {
	case ModeQuery, ModeFiles, ModeExcludeFiles, ModeFilterInclude, ModeFilterExclude, ModeRepos:
		return true
	default:
		return false
	}
}

// RowKind is what the cursor is on
type RowKind int

const (
	RowNone RowKind = iota
	RowRepo
	RowFile
	RowMore
)

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// Context provides read-only access to model state needed for input handling
type Context interface {
	CurrentKind() RowKind
	CurrentRepo() string
	CurrentFile() string
	// Value is the current text for a text mode, used to prefill the input
	Value(mode Mode) string
	RepoIDs() []string
	SelectedRepos() []string
}

// ModeHandler handles input for a specific mode
type ModeHandler interface {
	// HandleKey processes a key message and returns actions and whether to consume the event
	HandleKey(msg tea.KeyMsg, ctx Context) ([]Action, bool)

	// Enter is called when entering this mode
	Enter(ctx Context) []Action

	// Exit is called when leaving this mode
	Exit(ctx Context) []Action

	// Name returns the mode name for display
	Name() string
}

// TextWatcher is implemented by modes that react to every edit of the text input
type TextWatcher interface {
	TextChanged(text string)
}
