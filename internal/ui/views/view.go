package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PickerItem is one repository line in the picker
type PickerItem struct {
	ID       string
	Name     string
	Selected bool
	Cursor   bool
}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Query         string
	Files         string
	ExcludeFiles  string
	IgnoreCase    bool
	Repos         []string
	RepoCount     int
	ShowAdvanced  bool
	FilterInclude string
	FilterExclude string

	InputPrompt   string
	TextInput     string
	Picker        []PickerItem
	ConfirmTarget string

	Searching     bool
	StatusMessage string
	StatusIsError bool
	StatsLine     string

	Body    string
	HelpBar string
}

// Renderer handles all view rendering
type Renderer struct {
	styles  *Styles
	Results *ResultRenderer
}

// NewRenderer creates a new renderer
func NewRenderer(highlight bool) *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:  styles,
		Results: NewResultRenderer(styles, highlight),
	}
}

func (r *Renderer) Styles() *Styles {
	return r.styles
}

// HeaderLines renders everything above the result list
func (r *Renderer) HeaderLines(state ViewState) []string {
	var lines []string

	title := r.styles.Title.Render("houndgrip")
	if state.Searching {
		title += "  " + r.styles.StatusLoading.Render("searching…")
	}
	lines = append(lines, title)

	icase := "off"
	if state.IgnoreCase {
		icase = "on"
	}
	lines = append(lines, r.field("query", state.Query)+"  "+r.field("ignore case", icase))

	if state.ShowAdvanced {
		repos := "all"
		if len(state.Repos) > 0 {
			repos = fmt.Sprintf("%s (%d of %d)", strings.Join(state.Repos, ", "), len(state.Repos), state.RepoCount)
		}
		lines = append(lines,
			r.field("files", state.Files)+"  "+r.field("exclude", state.ExcludeFiles),
			r.field("repos", repos),
		)
	}

	if state.FilterInclude != "" || state.FilterExclude != "" {
		f := "[Filter"
		if state.FilterInclude != "" {
			f += " +" + state.FilterInclude
		}
		if state.FilterExclude != "" {
			f += " -" + state.FilterExclude
		}
		lines = append(lines, r.styles.Filter.Render(f+"]"))
	}

	switch {
	case state.ConfirmTarget != "":
		lines = append(lines, r.styles.Confirm.Render(fmt.Sprintf("Remove '%s' from results? (y/n): ", state.ConfirmTarget)))
	case state.InputPrompt != "":
		lines = append(lines, r.styles.Label.Render(state.InputPrompt)+state.TextInput)
	}
	return lines
}

// FooterLines renders the status and help bar below the result list
func (r *Renderer) FooterLines(state ViewState) []string {
	var lines []string
	switch {
	case state.StatusMessage != "" && state.StatusIsError:
		lines = append(lines, r.styles.StatusError.Render(state.StatusMessage))
	case state.StatusMessage != "":
		lines = append(lines, r.styles.StatusSuccess.Render(state.StatusMessage))
	case state.StatsLine != "":
		lines = append(lines, r.styles.Dim.Render(state.StatsLine))
	default:
		lines = append(lines, "")
	}
	lines = append(lines, r.styles.Help.Render(state.HelpBar))
	return lines
}

// RenderPicker renders the repo picker list in place of results
func (r *Renderer) RenderPicker(items []PickerItem) string {
	if len(items) == 0 {
		return r.styles.Dim.Render("  no matching repositories")
	}
	var b strings.Builder
	for i, it := range items {
		box := "[ ]"
		if it.Selected {
			box = "[x]"
		}
		line := fmt.Sprintf("  %s %s", box, it.Name)
		if it.Name != it.ID {
			line += r.styles.Dim.Render(" (" + it.ID + ")")
		}
		if it.Cursor {
			line = r.styles.SelectionBg.Render(line)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	parts := append(r.HeaderLines(state), "")
	parts = append(parts, state.Body)
	parts = append(parts, r.FooterLines(state)...)
	return r.styles.Main.MaxHeight(max(state.Height, 1)).Render(strings.Join(parts, "\n"))
}

func (r *Renderer) field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return r.styles.Label.Render(label+": ") + r.styles.Value.Render(value)
}

// Height of a rendered block in lines
func Height(lines []string) int {
	return lipgloss.Height(strings.Join(lines, "\n"))
}
