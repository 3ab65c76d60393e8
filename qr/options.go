// Package qr renders payload strings into QR code images.
package qr

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/skip2/go-qrcode"
)

// Default colors of a freshly loaded page.
const (
	DefaultColorDark  = "#000000"
	DefaultColorLight = "#ffffff"
)

var ErrInvalidColor = errors.New("invalid color")

// CorrectLevel is the error correction level of a QR symbol.
type CorrectLevel int

const (
	CorrectLow      CorrectLevel = iota // ~7% recovery
	CorrectMedium                       // ~15%
	CorrectQuartile                     // ~25%
	CorrectHigh                         // ~30%
)

func (l CorrectLevel) String() string {
	switch l {
	case CorrectLow:
		return "L"
	case CorrectMedium:
		return "M"
	case CorrectQuartile:
		return "Q"
	case CorrectHigh:
		return "H"
	}
	return fmt.Sprintf("CorrectLevel(%d)", int(l))
}

func (l CorrectLevel) recoveryLevel() (qrcode.RecoveryLevel, error) {
	switch l {
	case CorrectLow:
		return qrcode.Low, nil
	case CorrectMedium:
		return qrcode.Medium, nil
	case CorrectQuartile:
		return qrcode.High, nil
	case CorrectHigh:
		return qrcode.Highest, nil
	}
	return 0, fmt.Errorf("unknown correct level %d", int(l))
}

// Options is the record handed to an Encoder for one rendering.
type Options struct {
	Text         string
	Width        int
	Height       int
	ColorDark    string
	ColorLight   string
	CorrectLevel CorrectLevel
}

// ParseColor parses a "#rrggbb" (or "#rgb") hex color.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 4) {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// NormalizeColor returns s as lower-case "#rrggbb".
func NormalizeColor(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
}
