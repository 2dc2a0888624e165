package ansi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	result := Colorize(Red, "danger")
	assert.Equal(t, "\033[31mdanger\033[0m", result)
}

func TestColorf(t *testing.T) {
	result := Colorf(Green, "health: %d", 42)
	assert.Equal(t, "\033[32mhealth: 42\033[0m", result)
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	assert.Equal(t, "red normal bold green", StripANSI(input))
	assert.Equal(t, "plain text", StripANSI("plain text"))
	assert.Equal(t, "", StripANSI(""))
}

func TestWidthAndPadRight(t *testing.T) {
	styled := Colorize(BrightYellow, "Aria") + " ♥"
	assert.Equal(t, 6, Width(styled))
	padded := PadRight(styled, 10)
	assert.Equal(t, 10, Width(padded))
	assert.Equal(t, "Aria ♥    ", StripANSI(padded))
	assert.Equal(t, styled, PadRight(styled, 3))
}

// Property: StripANSI(Colorize(color, text)) == text for any ASCII text.
func TestPropertyStripANSIInversesColorize(t *testing.T) {
	colors := []string{Red, Green, Blue, Yellow, Cyan, Magenta, White, Bold, Dim}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		colorIdx := rapid.IntRange(0, len(colors)-1).Draw(t, "color")
		stripped := StripANSI(Colorize(colors[colorIdx], text))
		assert.Equal(t, text, stripped, "stripping ANSI from colorized text should yield original")
	})
}

// Property: PadRight never shortens and always reaches the requested width.
func TestPropertyPadRightWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-z ]{0,20}`).Draw(t, "text")
		width := rapid.IntRange(0, 40).Draw(t, "width")
		got := Width(PadRight(Colorize(Cyan, text), width))
		assert.Equal(t, max(width, len(text)), got)
	})
}

// Property: StripANSI output length <= input length.
func TestPropertyStripANSIOutputShorterOrEqual(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		assert.LessOrEqual(t, len(StripANSI(text)), len(text))
	})
}
