// Package tui provides the interactive Bubble Tea dashboard for archifinance.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/auth"
	"github.com/theirongolddev/archifinance/internal/config"
	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/pipeline"
	"github.com/theirongolddev/archifinance/internal/tui/components"
	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

const (
	tabProjects = iota
	tabAlerts
	tabReports
	tabHistory
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 110
	maxContentWidth  = 170
	minContentHeight = 5

	opTimeout = 10 * time.Second
)

var timeNow = time.Now

// Options configures a new App.
type Options struct {
	Ledger  *ledger.Ledger
	Config  config.Config
	Logger  *logging.Logger
	Project string // initial name/client filter

	// Reload re-reads persisted state; nil disables the r key.
	Reload func(context.Context) error
	// SaveConfig persists settings; nil means config.Save.
	SaveConfig func(config.Config) error
	// SkipLogin opens the dashboard directly.
	SkipLogin bool
}

// opDoneMsg reports the end of a ledger write or reload.
type opDoneMsg struct {
	done string
	err  error
}

type formKind int

const (
	formNone formKind = iota
	formNewTx
	formNewProject
	formComplete
)

// App is the root Bubble Tea model.
type App struct {
	ledger     *ledger.Ledger
	cfg        config.Config
	log        *logging.Logger
	account    auth.Account
	reload     func(context.Context) error
	saveConfig func(config.Config) error

	// Derived views, rebuilt by recompute.
	summaries []model.ProjectSummary
	portfolio model.PortfolioStats
	alerts    []model.Alert
	history   []model.CompletedProject

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	project   string

	// Login gate
	authed    bool
	user      string
	loginForm *huh.Form
	loginIn   *LoginInput
	loginErr  string

	// Modal form
	form      *huh.Form
	formKind  formKind
	txIn      *TxInput
	projectIn *ProjectInput
	confirm   *bool
	target    model.Project

	// Per-tab state
	projState projectsState
	alertSt   alertsState
	period    pipeline.Period
	histState historyState
	settings  settingsState

	spinner spinner.Model
	busy    bool
	message string
	msgErr  bool
	savedAt time.Time
}

// NewApp builds the dashboard around an already loaded ledger.
func NewApp(opts Options) App {
	lg := opts.Logger
	if lg == nil {
		lg = logging.Discard()
	}
	save := opts.SaveConfig
	if save == nil {
		save = config.Save
	}
	period, err := pipeline.ParsePeriod(opts.Config.General.DefaultPeriod)
	if err != nil {
		period = pipeline.PeriodMonth
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.AccentBright).Background(theme.Active.Surface)

	a := App{
		ledger:     opts.Ledger,
		cfg:        opts.Config,
		log:        lg.WithComponent(logging.ComponentTUI),
		account:    auth.Account{Email: opts.Config.Auth.Email, PasswordHash: opts.Config.Auth.PasswordHash},
		reload:     opts.Reload,
		saveConfig: save,
		project:    opts.Project,
		period:     period,
		histState:  historyState{filter: pipeline.HistoryAll},
		spinner:    sp,
		authed:     opts.SkipLogin,
	}
	if !a.authed {
		a.loginIn = &LoginInput{Email: opts.Config.Auth.Email}
		a.loginForm = NewLoginForm(a.loginIn)
	}
	a.recompute()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.loginForm != nil {
		cmds = append(cmds, a.loginForm.Init())
	}
	return tea.Batch(cmds...)
}

// recompute rebuilds every derived view from the ledger.
func (a *App) recompute() {
	all := a.ledger.Summaries()
	a.alerts = a.ledger.ActiveAlerts()
	a.portfolio = pipeline.AggregatePortfolio(all, len(a.alerts))
	a.summaries = pipeline.FilterByProject(all, a.project)
	a.history = pipeline.FilterHistory(a.ledger.History(), a.histState.filter)

	a.projState.cursor = clamp(a.projState.cursor, len(a.summaries))
	a.alertSt.cursor = clamp(a.alertSt.cursor, len(a.alerts))
	a.histState.cursor = clamp(a.histState.cursor, len(a.history))
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.loginForm != nil {
			a.loginForm = a.loginForm.WithWidth(formWidth(msg.Width))
		}
		if a.form != nil {
			a.form = a.form.WithWidth(formWidth(msg.Width))
		}
		return a, nil

	case opDoneMsg:
		a.busy = false
		if msg.err != nil {
			a.message = msg.err.Error()
			a.msgErr = true
			a.log.Warn("operation failed", logging.FieldError, msg.err)
		} else {
			a.message = msg.done
			a.msgErr = false
			a.savedAt = timeNow()
		}
		a.recompute()
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	if !a.authed {
		return a.updateLogin(msg)
	}
	if a.form != nil {
		return a.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return a.updateMouse(msg)
	case tea.KeyMsg:
		return a.updateKey(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.reload != nil && !a.busy {
			return a.run("reloaded", a.reload)
		}
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	}
	if idx := components.TabIdxByKey(key); idx >= 0 {
		a.activeTab = idx
		return a, nil
	}

	switch a.activeTab {
	case tabProjects:
		return a.updateProjectsKey(key)
	case tabAlerts:
		return a.updateAlertsKey(key)
	case tabReports:
		if key == "p" {
			a.period = a.period.Next()
		}
	case tabHistory:
		return a.updateHistoryKey(key)
	case tabSettings:
		return a.updateSettingsKey(key)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return a.moveCursor(-1), nil
	case tea.MouseButtonWheelDown:
		return a.moveCursor(1), nil
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// moveCursor moves the list cursor of the active tab by delta.
func (a App) moveCursor(delta int) App {
	switch a.activeTab {
	case tabProjects:
		a.projState.cursor = clamp(a.projState.cursor+delta, len(a.summaries))
	case tabAlerts:
		a.alertSt.cursor = clamp(a.alertSt.cursor+delta, len(a.alerts))
	case tabHistory:
		a.histState.cursor = clamp(a.histState.cursor+delta, len(a.history))
	case tabSettings:
		if !a.settings.editing {
			a.settings.cursor = clamp(a.settings.cursor+delta, len(settingsFields))
		}
	}
	return a
}

// run executes fn off the UI goroutine and reports through opDoneMsg.
func (a App) run(done string, fn func(context.Context) error) (tea.Model, tea.Cmd) {
	a.busy = true
	a.message = ""
	op := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opDoneMsg{done: done, err: fn(ctx)}
	}
	return a, tea.Batch(op, a.spinner.Tick)
}

// ─── Login gate ─────────────────────────────────────────────────

// authenticate checks the login answers and opens the dashboard.
func (a *App) authenticate(in LoginInput) error {
	email, err := a.account.Check(in.Email, in.Password)
	if err != nil {
		a.log.Info("login rejected", logging.FieldError, err)
		a.loginErr = err.Error()
		return err
	}
	a.authed = true
	a.user = email
	a.loginForm = nil
	a.loginIn = nil
	a.loginErr = ""
	if a.account.Demo() {
		a.message = "demo mode: run `archifinance setup` to create an account"
	}
	return nil
}

func (a App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.loginForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.loginForm = f
	}

	switch a.loginForm.State {
	case huh.StateCompleted:
		if err := a.authenticate(*a.loginIn); err != nil {
			a.loginIn = &LoginInput{Email: a.loginIn.Email}
			a.loginForm = NewLoginForm(a.loginIn).WithWidth(formWidth(a.width))
			return a, a.loginForm.Init()
		}
		return a, nil
	case huh.StateAborted:
		return a, tea.Quit
	}
	return a, cmd
}

// ─── Modal forms ────────────────────────────────────────────────

func formWidth(w int) int {
	if w <= 0 || w > 70 {
		return 70
	}
	return w - 4
}

func (a App) openForm(kind formKind, f *huh.Form) (tea.Model, tea.Cmd) {
	a.form = f.WithWidth(formWidth(a.width))
	a.formKind = kind
	return a, a.form.Init()
}

func (a App) closeForm() App {
	a.form = nil
	a.formKind = formNone
	a.txIn = nil
	a.projectIn = nil
	a.confirm = nil
	return a
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		return a.closeForm(), nil
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateAborted:
		return a.closeForm(), nil
	case huh.StateCompleted:
		return a.submitForm()
	}
	return a, cmd
}

func (a App) submitForm() (tea.Model, tea.Cmd) {
	kind, txIn, projectIn, confirm, target := a.formKind, a.txIn, a.projectIn, a.confirm, a.target
	a = a.closeForm()
	l := a.ledger

	switch kind {
	case formNewTx:
		req, err := txIn.Parse()
		if err != nil {
			return a.fail(err), nil
		}
		return a.run("transaction added", func(ctx context.Context) error {
			_, err := l.AddTransaction(ctx, req)
			return err
		})
	case formNewProject:
		req, err := projectIn.Parse()
		if err != nil {
			return a.fail(err), nil
		}
		return a.run(fmt.Sprintf("project %q created", req.Name), func(ctx context.Context) error {
			_, err := l.AddProject(ctx, req)
			return err
		})
	case formComplete:
		if confirm == nil || !*confirm {
			return a, nil
		}
		id := target.ID
		return a.run(fmt.Sprintf("%s moved to history", target.Name), func(ctx context.Context) error {
			_, err := l.CompleteProject(ctx, id)
			return err
		})
	}
	return a, nil
}

func (a App) fail(err error) App {
	a.message = err.Error()
	a.msgErr = true
	return a
}

// ─── Layout ─────────────────────────────────────────────────────

func (a App) contentWidth() int {
	if a.width > maxContentWidth {
		return maxContentWidth
	}
	return a.width
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.authed {
		return a.viewLogin()
	}
	if a.form != nil {
		return a.viewModal(a.form.View())
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  archifinance needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, max(a.height, 5)), max(a.height, 5))
}

func (a App) viewLogin() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render("◈ ArchiFinance")
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(" · Project finance for architects")

	var b strings.Builder
	b.WriteString(logo + sub + "\n\n")
	b.WriteString(a.loginForm.View())
	if a.loginErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.loginErr))
	}
	if a.account.Demo() {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No account configured: any email and password will do."))
	}
	return a.viewModal(b.String())
}

// viewModal centers body in an accent-bordered card.
func (a App) viewModal(body string) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	groups := []struct {
		name  string
		binds [][2]string
	}{
		{"Navigation", [][2]string{
			{"1-5", "Jump to tab"},
			{"← →", "Previous / next tab"},
			{"j k", "Move in lists"},
			{"enter", "Open detail / edit setting"},
		}},
		{"Projects", [][2]string{
			{"n", "New transaction"},
			{"N", "New project"},
			{"C", "Complete project"},
		}},
		{"Alerts", [][2]string{
			{"d", "Dismiss alert"},
			{"u", "Restore last dismissed"},
		}},
		{"Views", [][2]string{
			{"p", "Cycle report period"},
			{"f", "Cycle history filter"},
			{"r", "Reload from database"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard shortcuts"))
	b.WriteString("\n")
	for _, g := range groups {
		b.WriteString("\n" + section.Render(g.name) + "\n")
		for _, kb := range g.binds {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-6s", kb[0])), desc.Render(kb[1]))
		}
	}
	return a.viewModal(strings.TrimRight(b.String(), "\n"))
}

func (a App) viewMain() string {
	t := theme.Active
	w, h, cw := a.width, a.height, a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	busy := ""
	if a.busy {
		busy = a.spinner.View()
	}
	status := components.RenderStatusBar(w, components.Status{
		User:    a.user,
		SavedAt: a.savedAt,
		Message: a.message,
		IsError: a.msgErr,
		Busy:    busy,
	})

	contentH := h - lipgloss.Height(header) - lipgloss.Height(status)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabProjects:
		content = a.renderProjectsTab(cw, contentH)
	case tabAlerts:
		content = a.renderAlertsTab(cw)
	case tabReports:
		content = a.renderReportsTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	out := lipgloss.JoinVertical(lipgloss.Left, header, content, status)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, out,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// tabAtX returns the tab under column x of the tab bar, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	n := len(strings.Split(s, "\n"))
	if n >= h {
		return s
	}
	return s + strings.Repeat("\n", h-n)
}

// fillLinesWithBackground pads every line to w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
