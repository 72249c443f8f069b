package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"houndgrip/internal/config"
	"houndgrip/internal/domain"
	"houndgrip/internal/eventbus"
	"houndgrip/internal/query"
	"houndgrip/internal/results"
	"houndgrip/internal/ui/input"
	inputtypes "houndgrip/internal/ui/input/types"
	"houndgrip/internal/ui/views"
)

const statusTimeout = 3 * time.Second

// externalViewer runs the programs that take over the terminal or leave it
type externalViewer interface {
	ShowInPager(content string) error
	Browse(url string) error
}

// Model represents the UI state
type Model struct {
	ctx     context.Context
	results *results.Model
	config  *config.Config
	prefs   *config.Preferences

	width    int
	height   int
	help     help.Model
	viewport viewport.Model

	renderer     *views.Renderer
	inputHandler *input.Handler
	viewer       externalViewer

	// search form and filter as edited; the results model holds what was last sent
	params       query.Params
	showAdvanced bool
	filter       results.Filter

	display   []*domain.RepoResult // results as shown, after filtering
	rows      []views.Row
	offsets   []int
	cursor    int
	collapsed map[string]bool
	repoIDs   []string
	highlight *regexp.Regexp

	searching bool
	status    string
	statusErr bool
	statusID  int
	statusTTL time.Duration
	statsLine string

	inPagerMode bool

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model. initial seeds the search form, normally
// from a shareable query string.
func NewModel(ctx context.Context, res *results.Model, cfg *config.Config, prefs *config.Preferences, initial query.Params) *Model {
	m := &Model{
		ctx:          ctx,
		results:      res,
		config:       cfg,
		prefs:        prefs,
		help:         help.New(),
		viewport:     viewport.New(0, 0),
		renderer:     views.NewRenderer(cfg.UISettings.ContextHighlight),
		inputHandler: input.New(),
		viewer:       NewPagerOps(log.Writer()),
		params:       res.ApplyPreferences(initial),
		collapsed:    make(map[string]bool),
		statusTTL:    statusTimeout,
	}
	m.showAdvanced = m.params.Files != "" || m.params.ExcludeFiles != "" || len(m.params.Repos) > 0
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	if pager, ok := m.viewer.(*PagerOps); ok {
		pager.SetProgram(p)
	}
}

// Init loads the repository catalog, which also runs the initial search
func (m *Model) Init() tea.Cmd {
	res, ctx := m.results, m.ctx
	return func() tea.Msg {
		if err := res.LoadRepos(ctx); err != nil && !errors.Is(err, results.ErrStale) {
			log.Printf("UI: startup failed: %v", err)
		}
		return nil
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.inPagerMode {
			return m, nil
		}

		actions, cmd := m.inputHandler.HandleKey(msg, modelContext{m: m})

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}
		return m, tea.Batch(cmds...)

	default:
		inputCmd := m.inputHandler.Update(msg)
		_, cmd := m.handleNonKeyboardMsg(msg)
		return m, tea.Batch(inputCmd, cmd)
	}
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case opErrMsg:
		return m, m.flash(msg.err.Error(), true)

	case statusMsg:
		return m, m.flash(msg.text, false)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			log.Printf("UI: %s pager failed: %v", msg.what, msg.err)
			return m, m.flash(fmt.Sprintf("Could not show %s: %v", msg.what, msg.err), true)
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil
	}
	return m, nil
}

// handleEvent applies a results event to the screen
func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.ReposLoadedEvent:
		m.repoIDs = m.results.RepoIDs()
		m.params.Repos = m.results.ValidRepos(m.params.Repos)

	case eventbus.SearchStartedEvent:
		m.params = e.Params
		m.searching = true
		if m.statusErr {
			m.status, m.statusErr = "", false
		}

	case eventbus.SearchCompletedEvent:
		m.searching = false
		m.display = e.Results
		m.collapsed = make(map[string]bool)
		m.cursor = 0
		m.viewport.SetYOffset(0)

		sent := m.results.Params()
		m.highlight = nil
		m.statsLine = ""
		if sent.Query != "" {
			if re, err := query.CompileQuery(sent.Query, sent.IgnoreCase); err == nil {
				m.highlight = re
			}
			if m.config.UISettings.ShowStats {
				m.statsLine = views.RenderStats(e.Stats, len(e.Results), countFiles(e.Results))
			}
		}
		m.refresh()
		if !m.filter.IsZero() {
			return m.filterCmd(m.filter)
		}

	case eventbus.LoadMoreStartedEvent:
		m.status = fmt.Sprintf("Loading %d more files from %s…", e.ToLoad, m.results.RepoDisplayName(e.Repo))
		m.statusErr = false

	case eventbus.FilteredEvent:
		m.display = e.Results
		if !m.statusErr {
			m.status = ""
		}
		m.refresh()

	case eventbus.DeletedEvent:
		m.display = e.Results
		m.refresh()
		if !m.filter.IsZero() {
			return m.filterCmd(m.filter)
		}

	case eventbus.ErrorEvent:
		m.searching = false
		if errors.Is(e.Err, query.ErrInvalidPattern) {
			// keep the last filter that compiled
			m.filter = m.results.ActiveFilter()
		}
		m.status = e.Message
		m.statusErr = true

	case eventbus.ConfigReloadedEvent:
		return m.flash("Preferences reloaded", false)
	}
	return nil
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		m.navigate(a.Direction)

	case inputtypes.SubmitTextAction:
		return m.submitText(a.Mode, strings.TrimSpace(a.Text))

	case inputtypes.SubmitReposAction:
		m.params.Repos = m.results.SelectRepos(a.Repos)
		if m.params.Query == "" {
			return nil
		}
		return m.startSearch()

	case inputtypes.ShowFileAction:
		content, ok := m.fileContent(a.Repo, a.File)
		if !ok {
			return nil
		}
		return m.pagerCmd(a.File, content)

	case inputtypes.LoadMoreAction:
		return m.loadMoreCmd(a.Repo)

	case inputtypes.DeleteFileAction:
		res := m.results
		return func() tea.Msg {
			res.DeleteFile(a.File, a.Repo)
			return nil
		}

	case inputtypes.DeleteRepoAction:
		res := m.results
		return func() tea.Msg {
			res.DeleteRepo(a.Repo)
			return nil
		}

	case inputtypes.ToggleRepoAction:
		m.collapsed[a.Repo] = !m.collapsed[a.Repo]
		m.refresh()

	case inputtypes.OpenLinkAction:
		return m.openLink(a.Repo, a.File)

	case inputtypes.ClearFilterAction:
		if m.filter.IsZero() {
			return nil
		}
		m.filter = results.Filter{}
		return m.filterCmd(m.filter)

	case inputtypes.ToggleIgnoreCaseAction:
		m.params.IgnoreCase = !m.params.IgnoreCase
		if m.params.Query == "" {
			return nil
		}
		return m.startSearch()

	case inputtypes.ToggleAdvancedAction:
		m.showAdvanced = !m.showAdvanced
		m.refresh()

	case inputtypes.ShareAction:
		link := strings.TrimSuffix(m.config.Server, "/") + "/" + m.params.QueryString()
		return m.flash(link, false)

	case inputtypes.ToggleHelpAction:
		return m.pagerCmd("help", NewHelpRenderer().RenderHelpContent())

	case inputtypes.QuitAction:
		return tea.Quit
	}
	return nil
}

func (m *Model) submitText(mode inputtypes.Mode, text string) tea.Cmd {
	switch mode {
	case inputtypes.ModeQuery:
		m.params.Query = text
	case inputtypes.ModeFiles:
		m.params.Files = text
		m.showAdvanced = true
	case inputtypes.ModeExcludeFiles:
		m.params.ExcludeFiles = text
		m.showAdvanced = true
	case inputtypes.ModeFilterInclude:
		m.filter = results.NewFilter(text, m.filter.Exclude)
		return m.filterCmd(m.filter)
	case inputtypes.ModeFilterExclude:
		m.filter = results.NewFilter(m.filter.Include, text)
		return m.filterCmd(m.filter)
	default:
		return nil
	}
	if m.params.Query == "" && mode != inputtypes.ModeQuery {
		return nil
	}
	return m.startSearch()
}

// startSearch sends the edited form, unless a pattern fails to compile
func (m *Model) startSearch() tea.Cmd {
	p := m.params
	p.Range = query.Range{}
	if err := query.Validate(p); err != nil {
		m.status, m.statusErr = err.Error(), true
		return nil
	}
	if m.prefs != nil && m.prefs.AutoHideAdvanced() {
		m.showAdvanced = false
	}

	res, ctx := m.results, m.ctx
	return func() tea.Msg {
		if err := res.Search(ctx, p); err != nil && !errors.Is(err, results.ErrStale) {
			log.Printf("UI: search %q failed: %v", p.Query, err)
		}
		return nil
	}
}

func (m *Model) loadMoreCmd(repo string) tea.Cmd {
	res, ctx, filter := m.results, m.ctx, m.filter
	return func() tea.Msg {
		err := res.LoadMore(ctx, repo, filter)
		switch {
		case err == nil, errors.Is(err, results.ErrStale):
			return nil
		case errors.Is(err, results.ErrNothingToLoad),
			errors.Is(err, results.ErrLoadInProgress),
			errors.Is(err, results.ErrUnknownRepo):
			return opErrMsg{err: fmt.Errorf("%s: %w", repo, err)}
		}
		// request failures arrive as Error events
		log.Printf("UI: loading more from %s failed: %v", repo, err)
		return nil
	}
}

func (m *Model) filterCmd(f results.Filter) tea.Cmd {
	res := m.results
	return func() tea.Msg {
		if _, err := res.Filter(f); err != nil {
			log.Printf("UI: filter failed: %v", err)
		}
		return nil
	}
}

func (m *Model) openLink(repo, file string) tea.Cmd {
	line, rev := 0, ""
	if res, ok := m.results.ResultFor(repo); ok {
		rev = res.Rev
		for _, fm := range res.Matches {
			if fm.Filename == file && len(fm.Matches) > 0 {
				line = fm.Matches[0].LineNumber
				break
			}
		}
	}
	url, err := m.results.ResolveFileURL(repo, file, line, rev)
	if err != nil {
		return m.flash(err.Error(), true)
	}

	viewer := m.viewer
	return func() tea.Msg {
		if err := viewer.Browse(url); err != nil {
			return opErrMsg{err: fmt.Errorf("open %s: %w", url, err)}
		}
		return statusMsg{text: "Opened " + url}
	}
}

// pagerCmd returns a command that shows content using ov pager, pausing and resuming rendering
func (m *Model) pagerCmd(what, content string) tea.Cmd {
	return func() tea.Msg {
		if m.program != nil {
			m.program.Send(pauseRenderingMsg{})
		}

		err := m.viewer.ShowInPager(content)

		if m.program != nil {
			m.program.Send(resumeRenderingMsg{})
		}
		return pagerMsg{what: what, err: err}
	}
}

// fileContent renders every match block of one file for the pager
func (m *Model) fileContent(repo, file string) (string, bool) {
	for _, res := range m.display {
		if res.Repo != repo {
			continue
		}
		for _, fm := range res.Matches {
			if fm.Filename != file {
				continue
			}
			styles := m.renderer.Styles()
			header := styles.Repo.Render(m.results.RepoDisplayName(repo)) + "  " + styles.File.Render(file)
			return header + "\n\n" + m.renderer.Results.RenderBlocks(fm.Matches, m.highlight, "") + "\n", true
		}
	}
	return "", false
}

// flash shows a status message that clears itself
func (m *Model) flash(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusErr = isErr
	if m.statusTTL <= 0 {
		return nil
	}
	id := m.statusID
	return tea.Tick(m.statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m *Model) navigate(direction string) {
	if len(m.rows) == 0 {
		return
	}
	switch direction {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = len(m.rows) - 1
	case "pageup":
		m.cursor = m.rowAtLine(m.offsets[m.cursor] - m.pageSize())
	case "pagedown":
		m.cursor = m.rowAtLine(m.offsets[m.cursor] + m.pageSize())
	case "nextrepo":
		for i := m.cursor + 1; i < len(m.rows); i++ {
			if m.rows[i].Kind == inputtypes.RowRepo {
				m.cursor = i
				break
			}
		}
	case "prevrepo":
		for i := m.cursor - 1; i >= 0; i-- {
			if m.rows[i].Kind == inputtypes.RowRepo {
				m.cursor = i
				break
			}
		}
	}
	m.refresh()
}

// rowAtLine is the last row starting at or before line
func (m *Model) rowAtLine(line int) int {
	row := 0
	for i, off := range m.offsets {
		if off > line {
			break
		}
		row = i
	}
	return row
}

func (m *Model) pageSize() int {
	return max(m.viewport.Height-2, 1)
}

// refresh rebuilds the rows and list content after any change to what is shown
func (m *Model) refresh() {
	m.rows = views.BuildRows(m.display, m.collapsed)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	list := m.renderer.Results.RenderList(m.rows, m.display, m.results.RepoDisplayName, m.cursor, m.highlight)
	m.offsets = list.Offsets
	m.viewport.SetContent(list.Content)
	m.layout()
	m.ensureCursorVisible()
}

// layout gives the viewport whatever the header and footer leave
func (m *Model) layout() {
	state := m.viewState()
	used := views.Height(m.renderer.HeaderLines(state)) + views.Height(m.renderer.FooterLines(state)) + 1
	m.viewport.Width = max(m.width-2, 0)
	m.viewport.Height = max(m.height-used, 1)
}

// ensureCursorVisible scrolls so the cursor row is on screen, showing as
// much of a multi-line row as fits
func (m *Model) ensureCursorVisible() {
	if len(m.offsets) == 0 {
		m.viewport.SetYOffset(0)
		return
	}
	top := m.offsets[m.cursor]
	bottom := m.viewport.TotalLineCount() - 1
	if m.cursor+1 < len(m.offsets) {
		bottom = m.offsets[m.cursor+1] - 1
	}

	h := m.viewport.Height
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom >= m.viewport.YOffset+h:
		m.viewport.SetYOffset(min(top, bottom-h+1))
	}
}

func (m *Model) viewState() views.ViewState {
	state := views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Query:         m.params.Query,
		Files:         m.params.Files,
		ExcludeFiles:  m.params.ExcludeFiles,
		IgnoreCase:    m.params.IgnoreCase,
		Repos:         m.params.Repos,
		RepoCount:     len(m.repoIDs),
		ShowAdvanced:  m.showAdvanced,
		FilterInclude: m.filter.Include,
		FilterExclude: m.filter.Exclude,
		Searching:     m.searching,
		StatusMessage: m.status,
		StatusIsError: m.statusErr,
		StatsLine:     m.statsLine,
		HelpBar:       m.help.ShortHelpView(Keys.ShortHelp()),
	}

	switch mode := m.inputHandler.CurrentMode(); {
	case mode == inputtypes.ModeDeleteConfirm:
		state.ConfirmTarget = m.results.RepoDisplayName(m.inputHandler.ConfirmTarget())
	case mode.IsText():
		state.InputPrompt = m.inputHandler.Prompt()
		if ti := m.inputHandler.TextInput(); ti != nil {
			state.TextInput = ti.View()
		}
	}
	return state
}

// pickerItems is the visible window of the repo picker around its cursor
func (m *Model) pickerItems() []views.PickerItem {
	picker := m.inputHandler.Picker()
	matches := picker.Matches()
	start := max(picker.Cursor()-m.viewport.Height+1, 0)
	end := min(start+m.viewport.Height, len(matches))

	items := make([]views.PickerItem, 0, end-start)
	for i := start; i < end; i++ {
		id := matches[i].Str
		items = append(items, views.PickerItem{
			ID:       id,
			Name:     m.results.RepoDisplayName(id),
			Selected: picker.IsSelected(id),
			Cursor:   i == picker.Cursor(),
		})
	}
	return items
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	m.layout()
	state := m.viewState()

	switch {
	case m.inputHandler.CurrentMode() == inputtypes.ModeRepos:
		state.Body = m.renderer.RenderPicker(m.pickerItems())
	case len(m.rows) > 0:
		m.ensureCursorVisible()
		state.Body = m.viewport.View()
	case m.searching:
		state.Body = ""
	case m.results.State() == results.StateError:
		state.Body = ""
	case m.params.Query == "" || m.results.Params().Query == "":
		state.Body = m.renderer.Styles().Dim.Render("  Press / to search")
	default:
		state.Body = m.renderer.Styles().Dim.Render("  No results")
	}

	return m.renderer.Render(state)
}

func countFiles(res []*domain.RepoResult) int {
	n := 0
	for _, r := range res {
		n += len(r.Matches)
	}
	return n
}
