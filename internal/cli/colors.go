// Package cli holds terminal helpers for the startup banner and console logs.
package cli

import (
	"fmt"
	"os"
)

const (
	ResetCode = "\033[0m"
	BoldCode  = "\033[1m"
	DimCode   = "\033[2m"

	Black  = "\033[90m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
)

// RGB represents a TrueColor
type RGB struct {
	R, G, B float64
}

var (
	BrandBlue   = RGB{0, 120, 255}
	BrandPurple = RGB{189, 52, 235}
)

var disableColor = checkNoColor()

func checkNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// Enabled reports whether ANSI colors are written.
func Enabled() bool {
	return !disableColor
}

// SetEnabled overrides NO_COLOR detection, mostly for tests and LOG_COLOR.
func SetEnabled(on bool) {
	disableColor = !on
}

// Stylize wraps text in a color code.
func Stylize(text string, colorCode string) string {
	if disableColor {
		return text
	}
	return colorCode + text + ResetCode
}

// ColorizeRGB returns text wrapped in ANSI TrueColor escape codes
func ColorizeRGB(text string, c RGB) string {
	if disableColor {
		return text
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm%s\033[0m", int(c.R), int(c.G), int(c.B), text)
}

// Gradient colors text with a linear interpolation between start and end at
// progress (0.0 to 1.0).
func Gradient(text string, start, end RGB, progress float64) string {
	if disableColor {
		return text
	}
	r := start.R + (end.R-start.R)*progress
	g := start.G + (end.G-start.G)*progress
	b := start.B + (end.B-start.B)*progress

	return ColorizeRGB(text, RGB{r, g, b})
}

// Banner renders title with the brand gradient, one step per rune.
func Banner(title string) string {
	runes := []rune(title)
	if disableColor || len(runes) < 2 {
		return title
	}
	out := ""
	for i, r := range runes {
		out += Gradient(string(r), BrandBlue, BrandPurple, float64(i)/float64(len(runes)-1))
	}
	return out
}

func CheckMark() string {
	return Stylize("✔", Green)
}

func WarningSign() string {
	return Stylize("⚠", Yellow)
}

func CrossMark() string {
	return Stylize("✘", Red)
}
