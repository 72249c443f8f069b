package types

// Navigation actions
type NavigateAction struct {
	Direction string // "up", "down", "pageup", "pagedown", "home", "end", "nextrepo", "prevrepo"
}

func (a NavigateAction) Type() string { return "navigate" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

type SubmitTextAction struct {
	Text string
	Mode Mode // Which mode submitted the text
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct{}

func (a CancelTextAction) Type() string { return "cancel_text" }

// SubmitReposAction carries the repos chosen in the picker; empty means all
type SubmitReposAction struct {
	Repos []string
}

func (a SubmitReposAction) Type() string { return "submit_repos" }

// Result actions
type ShowFileAction struct {
	Repo string
	File string
}

func (a ShowFileAction) Type() string { return "show_file" }

type LoadMoreAction struct {
	Repo string
}

func (a LoadMoreAction) Type() string { return "load_more" }

type DeleteFileAction struct {
	Repo string
	File string
}

func (a DeleteFileAction) Type() string { return "delete_file" }

type DeleteRepoAction struct {
	Repo string
}

func (a DeleteRepoAction) Type() string { return "delete_repo" }

type ToggleRepoAction struct {
	Repo string
}

func (a ToggleRepoAction) Type() string { return "toggle_repo" }

type OpenLinkAction struct {
	Repo string
	File string
}

func (a OpenLinkAction) Type() string { return "open_link" }

type ClearFilterAction struct{}

func (a ClearFilterAction) Type() string { return "clear_filter" }

// Search option actions
type ToggleIgnoreCaseAction struct{}

func (a ToggleIgnoreCaseAction) Type() string { return "toggle_ignore_case" }

type ToggleAdvancedAction struct{}

func (a ToggleAdvancedAction) Type() string { return "toggle_advanced" }

type ShareAction struct{}

func (a ShareAction) Type() string { return "share" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for 'q'
}

func (a QuitAction) Type() string { return "quit" }
