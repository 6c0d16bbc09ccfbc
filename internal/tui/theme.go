package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// palette groups the adaptive colors a form theme needs, keeping light and
// dark variants side by side so contrast can be checked per role.
type palette struct {
	Primary, Bright, Accent       lipgloss.AdaptiveColor
	TextStrong, TextNormal        lipgloss.AdaptiveColor
	TextMuted, TextFaint          lipgloss.AdaptiveColor
	BorderFocused, BorderNormal   lipgloss.AdaptiveColor
	ButtonBg, ButtonBgBlurred     lipgloss.AdaptiveColor
	ButtonText, ButtonTextBlurred lipgloss.AdaptiveColor
}

// relgatePalette is the relgate brand: indigo accents over a neutral gray
// scale, darker shades on light backgrounds and lighter on dark ones.
var relgatePalette = palette{
	Primary: lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#818cf8"},
	Bright:  lipgloss.AdaptiveColor{Light: "#4338ca", Dark: "#a5b4fc"},
	Accent:  lipgloss.AdaptiveColor{Light: "#3730a3", Dark: "#c7d2fe"},

	TextStrong: lipgloss.AdaptiveColor{Light: "#111827", Dark: "#f9fafb"},
	TextNormal: lipgloss.AdaptiveColor{Light: "#374151", Dark: "#d1d5db"},
	TextMuted:  lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"},
	TextFaint:  lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#6b7280"},

	BorderFocused: lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#818cf8"},
	BorderNormal:  lipgloss.AdaptiveColor{Light: "#d1d5db", Dark: "#4b5563"},

	ButtonBg:        lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#818cf8"},
	ButtonBgBlurred: lipgloss.AdaptiveColor{Light: "#e5e7eb", Dark: "#374151"},

	ButtonText:        lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#111827"},
	ButtonTextBlurred: lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"},
}

// relgateTheme returns a huh theme styled with the relgate palette.
func relgateTheme() *huh.Theme {
	p := relgatePalette
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(p.Bright).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(p.TextMuted)
	t.Focused.Base = t.Focused.Base.
		BorderForeground(p.BorderFocused).
		BorderStyle(lipgloss.RoundedBorder())

	t.Focused.Option = t.Focused.Option.Foreground(p.TextNormal)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(p.Bright)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(p.Primary)

	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(p.ButtonText).
		Background(p.ButtonBg).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = t.Focused.BlurredButton.
		Foreground(p.ButtonTextBlurred).
		Background(p.ButtonBgBlurred).
		Padding(0, 1)

	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(p.Accent)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(p.TextFaint)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(p.Primary)

	t.Blurred.Title = t.Blurred.Title.Foreground(p.TextStrong)
	t.Blurred.Description = t.Blurred.Description.Foreground(p.TextFaint)
	t.Blurred.Base = t.Blurred.Base.BorderForeground(p.BorderNormal)
	t.Blurred.Option = t.Blurred.Option.Foreground(p.TextFaint)
	t.Blurred.SelectedOption = t.Blurred.SelectedOption.Foreground(p.TextMuted)

	t.Help.ShortKey = t.Help.ShortKey.Foreground(p.Primary)
	t.Help.ShortDesc = t.Help.ShortDesc.Foreground(p.TextFaint)
	t.Help.ShortSeparator = t.Help.ShortSeparator.Foreground(p.BorderNormal)
	t.Help.FullKey = t.Help.FullKey.Foreground(p.Primary)
	t.Help.FullDesc = t.Help.FullDesc.Foreground(p.TextMuted)
	t.Help.FullSeparator = t.Help.FullSeparator.Foreground(p.BorderNormal)

	return t
}
