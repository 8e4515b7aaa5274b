package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/config"
	"github.com/theirongolddev/archifinance/internal/pipeline"
	"github.com/theirongolddev/archifinance/internal/tui/components"
	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldToggle
	fieldCycle
)

// settingsField binds one settings row to the config.
type settingsField struct {
	section string
	label   string
	kind    fieldKind
	get     func(config.Config) string
	set     func(*config.Config, string)
	// next returns the following value of a cycle field.
	next func(string) string
}

func textField(label string, ptr func(*config.Config) *string) settingsField {
	return settingsField{
		section: "Profile",
		label:   label,
		kind:    fieldText,
		get:     func(c config.Config) string { return *ptr(&c) },
		set:     func(c *config.Config, v string) { *ptr(c) = v },
	}
}

func toggleField(label string, ptr func(*config.Config) *bool) settingsField {
	return settingsField{
		section: "Notifications",
		label:   label,
		kind:    fieldToggle,
		get:     func(c config.Config) string { return onOff(*ptr(&c)) },
		set:     func(c *config.Config, v string) { *ptr(c) = v == "on" },
		next: func(v string) string {
			if v == "on" {
				return "off"
			}
			return "on"
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// nextOf returns the element after v in opts, wrapping around.
func nextOf(opts []string, v string) string {
	for i, o := range opts {
		if o == v {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

var settingsFields = []settingsField{
	textField("Name", func(c *config.Config) *string { return &c.Profile.Name }),
	textField("Role", func(c *config.Config) *string { return &c.Profile.Role }),
	textField("Email", func(c *config.Config) *string { return &c.Profile.Email }),
	textField("Phone", func(c *config.Config) *string { return &c.Profile.Phone }),
	textField("Company", func(c *config.Config) *string { return &c.Profile.Company }),
	toggleField("Email alerts", func(c *config.Config) *bool { return &c.Notifications.EmailAlerts }),
	toggleField("Push notifications", func(c *config.Config) *bool { return &c.Notifications.PushNotifications }),
	toggleField("Weekly reports", func(c *config.Config) *bool { return &c.Notifications.WeeklyReports }),
	toggleField("Project updates", func(c *config.Config) *bool { return &c.Notifications.ProjectUpdates }),
	{
		section: "Preferences",
		label:   "Theme",
		kind:    fieldCycle,
		get:     func(c config.Config) string { return theme.ByName(c.Appearance.Theme).Name },
		set:     func(c *config.Config, v string) { c.Appearance.Theme = v },
		next:    func(v string) string { return nextOf(theme.Names(), v) },
	},
	{
		section: "Preferences",
		label:   "Default period",
		kind:    fieldCycle,
		get: func(c config.Config) string {
			p, err := pipeline.ParsePeriod(c.General.DefaultPeriod)
			if err != nil {
				return string(pipeline.PeriodMonth)
			}
			return string(p)
		},
		set: func(c *config.Config, v string) { c.General.DefaultPeriod = v },
		next: func(v string) string {
			p, _ := pipeline.ParsePeriod(v)
			return string(p.Next())
		},
	},
}

// settingsState tracks the settings tab.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		return a.moveCursor(1), nil
	case "k", "up":
		return a.moveCursor(-1), nil
	case "enter", " ":
		f := settingsFields[a.settings.cursor]
		if f.kind == fieldText {
			return a.settingsStartEdit(f)
		}
		a.applySetting(f, f.next(f.get(a.cfg)))
	}
	return a, nil
}

func (a App) settingsStartEdit(f settingsField) (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 40
	ti.SetValue(f.get(a.cfg))
	ti.Focus()

	a.settings.input = ti
	a.settings.editing = true
	a.settings.saved = false
	return a, a.settings.input.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		a.applySetting(settingsFields[a.settings.cursor], strings.TrimSpace(a.settings.input.Value()))
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}
	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// applySetting stores v into the config, applies it live and persists.
func (a *App) applySetting(f settingsField, v string) {
	cfg := a.cfg
	f.set(&cfg, v)
	switch f.label {
	case "Theme":
		theme.SetActive(v)
	case "Default period":
		if p, err := pipeline.ParsePeriod(v); err == nil {
			a.period = p
		}
	}
	a.cfg = cfg

	a.settings.saveErr = a.saveConfig(cfg)
	a.settings.saved = a.settings.saveErr == nil
	if a.settings.saved {
		a.savedAt = timeNow()
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	selLabel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)
	selValue := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	marker := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	prevSection := ""
	for i, f := range settingsFields {
		if f.section != prevSection {
			if prevSection != "" {
				b.WriteString("\n")
			}
			b.WriteString(section.Render(f.section) + "\n")
			prevSection = f.section
		}
		name := fmt.Sprintf("%-20s", f.label)
		val := f.get(a.cfg)
		switch {
		case a.settings.editing && i == a.settings.cursor:
			b.WriteString(marker.Render("▸ ") + selLabel.Render(name) + a.settings.input.View())
		case i == a.settings.cursor:
			b.WriteString(marker.Render("▸ ") + selLabel.Render(name) + selValue.Render(val))
		default:
			b.WriteString(label.Render("  "+name) + value.Render(val))
		}
		b.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).
			Render("Save failed: "+a.settings.saveErr.Error()))
	case a.settings.saved:
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Render("Saved"))
	}
	b.WriteString("\n" + dim.Render("[j/k] move  [enter] edit or toggle  [esc] cancel"))

	account := "demo mode (run `archifinance setup`)"
	if a.cfg.Auth.Configured() {
		account = a.cfg.Auth.Email
	}
	var info strings.Builder
	info.WriteString(label.Render("Version      ") + value.Render(config.Version) + "\n")
	info.WriteString(label.Render("Signed in as ") + value.Render(a.user) + "\n")
	info.WriteString(label.Render("Account      ") + value.Render(account) + "\n")
	info.WriteString(label.Render("Projects     ") + value.Render(strconv.Itoa(len(a.ledger.Projects()))) + "\n")
	info.WriteString(label.Render("Config file  ") + value.Render(config.Path()))

	return components.FocusedCard("Settings", strings.TrimRight(b.String(), "\n"), cw) + "\n" +
		components.ContentCard("About", info.String(), cw)
}
