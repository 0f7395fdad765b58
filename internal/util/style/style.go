package style

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	// Respect https://no-color.org/.
	noColor = os.Getenv("NO_COLOR") != ""

	isTTY   = isatty.IsTerminal(os.Stdout.Fd())
	isColor = isTTY && !noColor
)

func StdoutSupportsColor() bool { return isColor }

func doS(ms []int) string {
	if len(ms) == 0 {
		return "\033[0m"
	}
	var b strings.Builder
	_, _ = b.WriteString("\033[")
	for i, m := range ms {
		if i != 0 {
			_ = b.WriteByte(';')
		}
		_, _ = b.WriteString(strconv.FormatInt(int64(m), 10))
	}
	_ = b.WriteByte('m')
	return b.String()
}

func S(ms ...int) string {
	if isColor {
		return doS(ms)
	}
	return ""
}

func WithS(s string, ms ...int) string { return S(ms...) + s + S() }

// FgRGB builds a 24-bit foreground color sequence, for terminals that
// support it.
func FgRGB(r, g, b uint8) string {
	if !isColor {
		return ""
	}
	return doS([]int{38, 2, int(r), int(g), int(b)})
}
