package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"

	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/types"
)

// Banner text.
const (
	BannerTitle    = "YOU.COM SCRAPER"
	bannerTagline  = "A feature-rich web scraper for you.com\nBy Ousax"
	bannerHint     = "Type /help for available commands"
	bannerExitHint = "Press Ctrl+C to exit"
	bannerRuleSize = 60
)

// Banner renders the startup banner in theme colors. The title is drawn
// in the named figlet font; an empty or unknown font falls back to a
// boxed, letter-spaced title.
func Banner(theme render.Theme, font string) string {
	styles := NewStyles(theme)

	title := figletTitle(font)
	if title == "" {
		title = styles.Box.
			Bold(true).
			Foreground(theme.Primary).
			Render(spaced(BannerTitle))
	} else {
		title = styles.Primary.Render(title)
	}

	rule := styles.Primary.Render(strings.Repeat("=", bannerRuleSize))
	lines := []string{
		title,
		rule,
		styles.Primary.Render(bannerTagline),
		styles.Muted.Render("v" + types.Version),
		styles.Primary.Render(bannerHint),
		styles.Primary.Render(bannerExitHint),
		rule,
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// figletTitle renders BannerTitle in font, or returns "" when the font is
// not bundled. go-figure panics on unknown fonts.
func figletTitle(font string) (title string) {
	if font == "" {
		return ""
	}
	defer func() {
		if recover() != nil {
			title = ""
		}
	}()
	return strings.TrimRight(figure.NewFigure(BannerTitle, font, false).String(), "\n")
}

// spaced puts a space between letters of s.
func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}
