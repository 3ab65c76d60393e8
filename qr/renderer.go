package qr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"

	"github.com/skip2/go-qrcode"
)

// Encoder draws a QR code described by opts onto s.
type Encoder interface {
	Encode(s *Surface, opts Options) error
}

// Renderer is the go-qrcode backed Encoder.
type Renderer struct{}

// NewRenderer creates a new QR renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Encode renders opts to PNG and appends the image to s.
func (r *Renderer) Encode(s *Surface, opts Options) error {
	pngData, err := r.PNG(opts)
	if err != nil {
		return err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return fmt.Errorf("failed to read generated PNG: %w", err)
	}

	s.Append(NewImage(pngData, cfg.Width, cfg.Height))
	return nil
}

// PNG renders opts to PNG-encoded bytes.
func (r *Renderer) PNG(opts Options) ([]byte, error) {
	if opts.Width <= 0 || opts.Width != opts.Height {
		return nil, fmt.Errorf("unsupported QR dimensions %dx%d", opts.Width, opts.Height)
	}

	level, err := opts.CorrectLevel.recoveryLevel()
	if err != nil {
		return nil, err
	}
	dark, err := ParseColor(opts.ColorDark)
	if err != nil {
		return nil, err
	}
	light, err := ParseColor(opts.ColorLight)
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(opts.Text, level)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	code.ForegroundColor = dark
	code.BackgroundColor = light

	pngData, err := code.PNG(opts.Width)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code PNG: %w", err)
	}
	return pngData, nil
}
