// Package theme defines color themes for the archifinance TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, selected row)
	SurfaceBright lipgloss.Color
	Border        lipgloss.Color
	BorderBright  lipgloss.Color
	BorderAccent  lipgloss.Color // Focused card borders
	TextDim       lipgloss.Color // Hints, disabled
	TextMuted     lipgloss.Color // Labels, metadata
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	AccentDim     lipgloss.Color
	Green         lipgloss.Color // profitable, income
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color // warnings
	Red           lipgloss.Color // losses, at-risk
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = ArchiBlue

// ArchiBlue is the default slate and blue palette.
var ArchiBlue = Theme{
	Name:          "archi-blue",
	Background:    lipgloss.Color("#0F172A"),
	Surface:       lipgloss.Color("#1E293B"),
	SurfaceHover:  lipgloss.Color("#273549"),
	SurfaceBright: lipgloss.Color("#334155"),
	Border:        lipgloss.Color("#334155"),
	BorderBright:  lipgloss.Color("#475569"),
	BorderAccent:  lipgloss.Color("#3B82F6"),
	TextDim:       lipgloss.Color("#64748B"),
	TextMuted:     lipgloss.Color("#94A3B8"),
	TextPrimary:   lipgloss.Color("#F1F5F9"),
	Accent:        lipgloss.Color("#3B82F6"),
	AccentBright:  lipgloss.Color("#60A5FA"),
	AccentDim:     lipgloss.Color("#1E3A8A"),
	Green:         lipgloss.Color("#22C55E"),
	GreenBright:   lipgloss.Color("#4ADE80"),
	Orange:        lipgloss.Color("#F97316"),
	Red:           lipgloss.Color("#EF4444"),
	Blue:          lipgloss.Color("#2563EB"),
	BlueBright:    lipgloss.Color("#93C5FD"),
	Yellow:        lipgloss.Color("#EAB308"),
	Magenta:       lipgloss.Color("#A855F7"),
	Cyan:          lipgloss.Color("#06B6D4"),
}

// Blueprint is a deep navy palette with cyan line work.
var Blueprint = Theme{
	Name:          "blueprint",
	Background:    lipgloss.Color("#0A1931"),
	Surface:       lipgloss.Color("#102A4C"),
	SurfaceHover:  lipgloss.Color("#17365F"),
	SurfaceBright: lipgloss.Color("#1F4373"),
	Border:        lipgloss.Color("#1F4373"),
	BorderBright:  lipgloss.Color("#3A6EA5"),
	BorderAccent:  lipgloss.Color("#7FDBFF"),
	TextDim:       lipgloss.Color("#4F6D8F"),
	TextMuted:     lipgloss.Color("#A7C4E2"),
	TextPrimary:   lipgloss.Color("#F0F8FF"),
	Accent:        lipgloss.Color("#7FDBFF"),
	AccentBright:  lipgloss.Color("#B3ECFF"),
	AccentDim:     lipgloss.Color("#123A5A"),
	Green:         lipgloss.Color("#5FD38D"),
	GreenBright:   lipgloss.Color("#8EE6B0"),
	Orange:        lipgloss.Color("#FFA94D"),
	Red:           lipgloss.Color("#FF6B6B"),
	Blue:          lipgloss.Color("#4DA3FF"),
	BlueBright:    lipgloss.Color("#9CCBFF"),
	Yellow:        lipgloss.Color("#FFD43B"),
	Magenta:       lipgloss.Color("#DA77F2"),
	Cyan:          lipgloss.Color("#66D9E8"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("4"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("4"),
	AccentBright:  lipgloss.Color("12"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("11"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{ArchiBlue, Blueprint, Terminal}

// ByName returns a theme by its name, defaulting to ArchiBlue.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return ArchiBlue
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the theme names in display order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}
