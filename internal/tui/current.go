package tui

import "github.com/charmbracelet/huh"

// currentThemeName is the theme the root command resolved in Before,
// consulted by every huh.Form built afterward.
var currentThemeName string

// SetTheme records the active theme name. An unrecognised or empty name
// falls back to the relgate theme in CurrentTheme.
func SetTheme(name string) {
	currentThemeName = name
}

// CurrentTheme returns the huh.Theme matching the active theme name,
// defaulting to the relgate brand theme.
func CurrentTheme() *huh.Theme {
	if t := GetTheme(currentThemeName); t != nil {
		return t
	}
	return relgateTheme()
}
