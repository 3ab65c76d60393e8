package qr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestRendererEncode(t *testing.T) {
	var s Surface
	opts := Options{
		Text:         "https://example.com",
		Width:        300,
		Height:       300,
		ColorDark:    "#ff0000",
		ColorLight:   "#00ff00",
		CorrectLevel: CorrectHigh,
	}
	if err := NewRenderer().Encode(&s, opts); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("surface holds %d images, want 1", s.Len())
	}

	img := s.Image()
	if img.Width != 300 || img.Height != 300 {
		t.Errorf("image size = %dx%d, want 300x300", img.Width, img.Height)
	}

	decoded, err := png.Decode(bytes.NewReader(img.PNG()))
	if err != nil {
		t.Fatalf("decode PNG: %v", err)
	}
	seen := map[color.RGBA]bool{}
	b := decoded.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := decoded.At(x, y).RGBA()
			seen[color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}] = true
		}
	}
	red := color.RGBA{0xff, 0, 0, 0xff}
	green := color.RGBA{0, 0xff, 0, 0xff}
	if len(seen) != 2 || !seen[red] || !seen[green] {
		t.Errorf("image colors = %v, want only %v and %v", seen, red, green)
	}
	if got := decoded.At(0, 0); !sameColor(got, green) {
		t.Errorf("corner pixel = %v, want background %v", got, green)
	}
}

func TestRendererRejects(t *testing.T) {
	base := Options{Text: "x", Width: 200, Height: 200, ColorDark: DefaultColorDark, ColorLight: DefaultColorLight, CorrectLevel: CorrectHigh}

	tests := []struct {
		name   string
		modify func(*Options)
		is     error
	}{
		{"not square", func(o *Options) { o.Height = 300 }, nil},
		{"zero size", func(o *Options) { o.Width, o.Height = 0, 0 }, nil},
		{"bad dark color", func(o *Options) { o.ColorDark = "red" }, ErrInvalidColor},
		{"bad light color", func(o *Options) { o.ColorLight = "#12345" }, ErrInvalidColor},
		{"unknown level", func(o *Options) { o.CorrectLevel = 9 }, nil},
		{"too long", func(o *Options) { o.Text = strings.Repeat("a", 4000) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.modify(&opts)
			var s Surface
			err := NewRenderer().Encode(&s, opts)
			if err == nil {
				t.Fatal("Encode succeeded")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
			if s.Len() != 0 {
				t.Errorf("failed Encode left %d images", s.Len())
			}
		})
	}
}

func TestSurface(t *testing.T) {
	var s Surface
	if s.Image() != nil || s.Len() != 0 {
		t.Fatal("new surface is not empty")
	}
	a := NewImage([]byte("a"), 1, 1)
	b := NewImage([]byte("b"), 1, 1)
	s.Append(a)
	s.Append(b)
	if s.Len() != 2 || s.Image() != a {
		t.Errorf("Len = %d, Image = %v", s.Len(), s.Image())
	}
}

func TestImageDataURL(t *testing.T) {
	img := NewImage([]byte{0x89, 'P', 'N', 'G'}, 1, 1)
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})
	if got := img.DataURL(); got != want {
		t.Errorf("DataURL = %q, want %q", got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#000000", color.RGBA{0, 0, 0, 0xff}},
		{"#FFFFFF", color.RGBA{0xff, 0xff, 0xff, 0xff}},
		{"#1a2b3c", color.RGBA{0x1a, 0x2b, 0x3c, 0xff}},
		{" #ff0000 ", color.RGBA{0xff, 0, 0, 0xff}},
		{"#f00", color.RGBA{0xff, 0, 0, 0xff}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "000000", "#00000", "#0000000", "#gggggg", "black"} {
		if _, err := ParseColor(bad); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q) error = %v, want ErrInvalidColor", bad, err)
		}
	}
}

func TestNormalizeColor(t *testing.T) {
	got, err := NormalizeColor("#FF00aa")
	if err != nil || got != "#ff00aa" {
		t.Errorf("NormalizeColor = %q, %v", got, err)
	}
}

func TestCorrectLevelString(t *testing.T) {
	for l, want := range map[CorrectLevel]string{CorrectLow: "L", CorrectMedium: "M", CorrectQuartile: "Q", CorrectHigh: "H"} {
		if l.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(l), l.String(), want)
		}
	}
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	WriteTerminal(&buf, "https://example.com", CorrectHigh)
	if lines := strings.Count(buf.String(), "\n"); lines < 10 {
		t.Errorf("terminal output has %d lines, want a full symbol:\n%s", lines, buf.String())
	}
}

func sameColor(c color.Color, want color.RGBA) bool {
	r, g, b, a := c.RGBA()
	wr, wg, wb, wa := want.RGBA()
	return r == wr && g == wg && b == wb && a == wa
}
