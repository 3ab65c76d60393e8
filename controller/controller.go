// Package controller holds the state of one generator page: the selected
// content type, the typed field values, the size and colors, and the
// rendered QR code.
package controller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jaliph/qrrapido/payload"
	"github.com/jaliph/qrrapido/qr"
	"github.com/jaliph/qrrapido/utils"
)

// DownloadFilename is the name offered for the downloaded PNG.
const DownloadFilename = "qrrapido-codigo.png"

var (
	ErrNoArtifact  = errors.New("no QR code generated yet")
	ErrInvalidSize = errors.New("invalid size")
)

// Size is the pixel width and height of the generated QR code.
type Size int

const (
	SizeSmall  Size = 200
	SizeMedium Size = 300
	SizeLarge  Size = 400
)

// Sizes lists the selectable sizes, smallest first.
var Sizes = []Size{SizeSmall, SizeMedium, SizeLarge}

// ParseSize validates n against the selectable sizes.
func ParseSize(n int) (Size, error) {
	for _, s := range Sizes {
		if int(s) == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidSize, n)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Alert(message string) { f(message) }

// Downloader hands a rendered image to the user as a file.
type Downloader interface {
	Download(filename string, img *qr.Image) error
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(filename string, img *qr.Image) error

func (f DownloaderFunc) Download(filename string, img *qr.Image) error { return f(filename, img) }

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets where validation messages are shown.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithSize sets the initially active size.
func WithSize(s Size) Option {
	return func(c *Controller) { c.size = s }
}

// WithColors sets the initial dark and light colors.
func WithColors(dark, light string) Option {
	return func(c *Controller) {
		c.colorDark = dark
		c.colorLight = light
	}
}

// Controller mediates between user actions, the payload formatter and the encoder.
// It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	encoder  qr.Encoder
	notifier Notifier

	activeType payload.ContentType
	fields     payload.FieldSet
	size       Size
	colorDark  string
	colorLight string

	surface         qr.Surface
	downloadEnabled bool
	generations     int
}

// New creates a controller in the page's initial state: url selected,
// medium size, black on white, download disabled.
func New(enc qr.Encoder, opts ...Option) *Controller {
	c := &Controller{
		encoder:    enc,
		activeType: payload.ContentTypeURL,
		fields:     payload.FieldSet{},
		size:       SizeMedium,
		colorDark:  qr.DefaultColorDark,
		colorLight: qr.DefaultColorLight,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectType makes ct the active field group. Field values are kept.
func (c *Controller) SelectType(ct payload.ContentType) error {
	if !ct.Valid() {
		return fmt.Errorf("unknown content type %q", string(ct))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeType = ct
	return nil
}

// ActiveType returns the selected content type.
func (c *Controller) ActiveType() payload.ContentType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeType
}

// IsActive reports whether ct's field group is the visible one.
func (c *Controller) IsActive(ct payload.ContentType) bool {
	return c.ActiveType() == ct
}

// SelectSize makes s the active size option.
func (c *Controller) SelectSize(s Size) error {
	if _, err := ParseSize(int(s)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = s
	return nil
}

// Size returns the active size.
func (c *Controller) Size() Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// IsSizeActive reports whether s is the active size option.
func (c *Controller) IsSizeActive(s Size) bool {
	return c.Size() == s
}

// SetField stores the value typed into the named field.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[name] = value
}

// SetFields stores several field values at once.
func (c *Controller) SetFields(fields payload.FieldSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range fields {
		c.fields[k] = v
	}
}

// Fields returns a copy of every stored field value.
func (c *Controller) Fields() payload.FieldSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields.Clone()
}

// SetColors sets the module and background colors. Both must be hex colors.
func (c *Controller) SetColors(dark, light string) error {
	d, err := qr.NormalizeColor(dark)
	if err != nil {
		return err
	}
	l, err := qr.NormalizeColor(light)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colorDark, c.colorLight = d, l
	return nil
}

// Colors returns the dark and light colors.
func (c *Controller) Colors() (dark, light string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.colorDark, c.colorLight
}

// Generation is the outcome of one successful generate action.
type Generation struct {
	Type    payload.ContentType
	Payload string
	Size    Size
	Image   *qr.Image
}

// Generate builds the payload for the active type and renders it, replacing
// any previous QR code. A missing required field is shown through the
// notifier and returned as *payload.ValidationError. On any error the
// previous QR code and download state are kept.
func (c *Controller) Generate() (*Generation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text, err := payload.Format(c.activeType, c.fields)
	if err != nil {
		var verr *payload.ValidationError
		if errors.As(err, &verr) && c.notifier != nil {
			c.notifier.Alert(verr.Message)
		}
		return nil, err
	}

	opts := qr.Options{
		Text:         text,
		Width:        int(c.size),
		Height:       int(c.size),
		ColorDark:    c.colorDark,
		ColorLight:   c.colorLight,
		CorrectLevel: qr.CorrectHigh,
	}
	// Render off-screen; the displayed code is only replaced once encoding succeeds.
	var next qr.Surface
	if err := c.encoder.Encode(&next, opts); err != nil {
		utils.L().Warn("QR encoding failed", "type", c.activeType, "size", c.size, "error", err)
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}

	c.surface = next
	c.downloadEnabled = true
	c.generations++
	return &Generation{
		Type:    c.activeType,
		Payload: text,
		Size:    c.size,
		Image:   c.surface.Image(),
	}, nil
}

// DownloadEnabled reports whether a QR code has been generated.
func (c *Controller) DownloadEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downloadEnabled
}

// Image returns the current QR code, or nil before the first generation.
func (c *Controller) Image() *qr.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.Image()
}

// Download hands the current QR code to d as qrrapido-codigo.png.
// It returns ErrNoArtifact when nothing has been generated.
func (c *Controller) Download(d Downloader) error {
	img := c.Image()
	if img == nil {
		return ErrNoArtifact
	}
	return d.Download(DownloadFilename, img)
}

// State is a read-only view of a controller.
type State struct {
	ActiveType      payload.ContentType
	Fields          payload.FieldSet
	Size            Size
	ColorDark       string
	ColorLight      string
	DownloadEnabled bool
	Generations     int
	Image           *qr.Image
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		ActiveType:      c.activeType,
		Fields:          c.fields.Clone(),
		Size:            c.size,
		ColorDark:       c.colorDark,
		ColorLight:      c.colorLight,
		DownloadEnabled: c.downloadEnabled,
		Generations:     c.generations,
		Image:           c.surface.Image(),
	}
}
