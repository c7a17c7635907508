package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const bannerDefaultWidth = 60

// PrintBanner renders a box-drawing banner around a title using the default width.
func PrintBanner(title string) {
	PrintBannerWidth(title, bannerDefaultWidth)
}

// PrintBannerWidth renders a box-drawing banner around a title. Exhibit
// titles carry accented letters, so widths count runes.
func PrintBannerWidth(title string, width int) {
	fmt.Print(bannerLines(title, width))
}

func bannerLines(title string, width int) string {
	if width < 10 {
		width = bannerDefaultWidth
	}

	inner := width - 2
	if n := utf8.RuneCountInString(title) + 2; n > inner {
		inner = n
	}

	edge := strings.Repeat("═", inner)
	return fmt.Sprintf("╔%s╗\n║%s║\n╚%s╝\n", edge, padCenter(title, inner), edge)
}

func padCenter(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return string([]rune(text)[:width])
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-n-left)
}
