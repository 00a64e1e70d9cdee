package config

// Theme selects the console color scheme.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []Theme{ThemeAuto, ThemeLight, ThemeDark}

// Valid reports whether t is a known theme. Empty means auto.
func (t Theme) Valid() bool {
	if t == "" {
		return true
	}
	for _, v := range ValidThemes {
		if t == v {
			return true
		}
	}
	return false
}

// UIConfig holds user interface configuration.
type UIConfig struct {
	Theme Theme `yaml:"theme"`
}
