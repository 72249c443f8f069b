package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/noborus/ov/oviewer"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

type helpEntry struct {
	keys string
	desc string
}

var helpSections = []struct {
	title   string
	entries []helpEntry
}{
	{"Navigation", []helpEntry{
		{"↑/↓, j/k", "Move between repos, files and load-more rows"},
		{"PgUp/PgDn", "Page up/down"},
		{"gg/G", "Go to top/bottom"},
		{"Tab/S-Tab", "Next/previous repository"},
	}},
	{"Search", []helpEntry{
		{"/", "Edit the search pattern (regular expression)"},
		{"i", "Toggle ignore case"},
		{"f", "Only search file paths matching a pattern"},
		{"x", "Skip file paths matching a pattern"},
		{"r", "Pick repositories (type to narrow, Tab to toggle)"},
		{"a", "Show/hide the advanced fields"},
		{"s", "Show the shareable query string"},
	}},
	{"Results", []helpEntry{
		{"Enter", "View file matches / load more / collapse repo"},
		{"m", "Load all matches in the current repository"},
		{"o", "Open the current file in the browser"},
		{"d", "Remove the current file from the results"},
		{"D", "Remove the current repository from the results"},
	}},
	{"Filter loaded files", []helpEntry{
		{"F", "Keep files whose path matches"},
		{"X", "Hide files whose path matches"},
		{"c", "Clear the filter"},
	}},
	{"Other", []helpEntry{
		{"?", "Show this help"},
		{"q", "Quit"},
	}},
}

// RenderHelpContent generates help content with colors for the pager
func (r *HelpRenderer) RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("houndgrip Help"))
	help.WriteString("\n")

	for _, section := range helpSections {
		help.WriteString(sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(e.keys), descStyle.Render(e.desc)))
		}
	}

	help.WriteString("\n")
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  Patterns use Go regular expression syntax, e.g. func\\s+\\w+Handler"))
	return help.String()
}

// PagerOps runs full-screen helpers that need the terminal: the ov pager and the web browser
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
	browser *browser.Browser
}

// NewPagerOps creates a new pager operations instance. Browser diagnostics go to logOut.
func NewPagerOps(logOut io.Writer) *PagerOps {
	return &PagerOps{
		browser: browser.New("", io.Discard, logOut),
	}
}

func (h *PagerOps) SetProgram(p *tea.Program) {
	h.program = p
}

// ShowInPager shows content using ov pager
func (h *PagerOps) ShowInPager(content string) error {
	if h.program == nil {
		return errors.New("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// Browse opens url in the user's browser
func (h *PagerOps) Browse(url string) error {
	return h.browser.Browse(url)
}
