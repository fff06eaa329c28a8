package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/skim/internal/config"
)

const AppName = config.AppName

var LogoLines = []string{
	" ▄▄▄▄▄ ▄▄   ▄▄ ▄▄ ▄▄▄   ▄▄▄",
	"██▀    ██ ▄█▀  ██ ██▀█▄█▀██",
	"▀████▄ ████    ██ ██ ▀█▀ ██",
	"    ██ ██ ▀█▄  ██ ██     ██",
	"▀████▀ ██   ▀█ ██ ██     ██",
}

// Palette colors. ApplyPalette swaps them when the theme changes.
var (
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	AccentColor    lipgloss.Color
	SurfaceColor   lipgloss.Color
	TextColor      lipgloss.Color
	MutedColor     lipgloss.Color
	ErrorColor     lipgloss.Color
	SuccessColor   lipgloss.Color
)

// Styled components
var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	StatusBarStyle     lipgloss.Style
	PostTitleStyle     lipgloss.Style
	ReadItemStyle      lipgloss.Style
	SelectedItemStyle  lipgloss.Style
	HelpStyle          lipgloss.Style
	TimeStyle          lipgloss.Style
	ErrorMessageStyle  lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	TagStyle           lipgloss.Style
	EmptyStyle         = lipgloss.NewStyle()
)

func init() {
	ApplyPalette(config.Default().UI.Light)
}

// ApplyPalette rebuilds every style from c.
func ApplyPalette(c config.UIColors) {
	PrimaryColor = lipgloss.Color(c.Primary)
	SecondaryColor = lipgloss.Color(c.Secondary)
	AccentColor = lipgloss.Color(c.Accent)
	SurfaceColor = lipgloss.Color(c.Surface)
	TextColor = lipgloss.Color(c.Text)
	MutedColor = lipgloss.Color(c.Muted)
	ErrorColor = lipgloss.Color(c.Error)
	SuccessColor = lipgloss.Color(c.Success)

	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	PostTitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true)

	ReadItemStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(SurfaceColor).
		Background(AccentColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	TagStyle = lipgloss.NewStyle().
		Foreground(AccentColor)
}

// StatusStyle returns the style for a status severity.
func StatusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

// GetEmptyMessage is the banner shown when the current filter has no posts.
func GetEmptyMessage(filter string) string {
	return GetCompactBanner(fmt.Sprintf("no posts found for %s • ctrl+r to retry", filter))
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner renders the logo block printed by `skim version`.
func Banner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	tag := version
	if tag != "" && tag != "dev" && tag[0] != 'v' && tag[0] != 'V' {
		tag = "v" + tag
	}
	if tag != "" {
		lines = append(lines, fmt.Sprintf("    incremental post browser %s", tag))
	} else {
		lines = append(lines, "    incremental post browser")
	}

	colors := []lipgloss.Color{PrimaryColor, SecondaryColor, AccentColor}
	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(colors[i%len(colors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	border := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))
}

func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
