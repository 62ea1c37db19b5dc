// Package render draws the prize wheel, result dialog and celebrations on
// an ANSI terminal.
package render

import "fmt"

// ANSI escape sequences used by the wheel.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Reverse = "\033[7m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightYellow = "\033[93m"
	BrightWhite  = "\033[97m"

	// ClearLine returns the cursor to column zero and erases the line.
	ClearLine  = "\r\033[2K"
	HideCursor = "\033[?25l"
	ShowCursor = "\033[?25h"
	Bell       = "\a"
)

// FgRGB returns a 24-bit foreground color sequence.
func FgRGB(r, g, b uint8) string {
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
}

// BgRGB returns a 24-bit background color sequence.
func BgRGB(r, g, b uint8) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
}

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// StripANSI removes CSI escape sequences from s, leaving the printable text.
// Incomplete sequences are kept verbatim.
//
// Postcondition: len(StripANSI(s)) <= len(s).
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			// parameter and intermediate bytes, then one final byte in @..~
			for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		out = append(out, s[i])
		i++
	}
	return string(out)
}
