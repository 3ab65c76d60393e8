package qr

import "encoding/base64"

// Image is one rendered QR code.
type Image struct {
	Width  int
	Height int
	png    []byte
}

// NewImage wraps PNG-encoded data.
func NewImage(png []byte, width, height int) *Image {
	return &Image{Width: width, Height: height, png: png}
}

// PNG returns the PNG-encoded image.
func (i *Image) PNG() []byte {
	return i.png
}

// DataURL returns the image as a data:image/png;base64 URI.
func (i *Image) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(i.png)
}

// Surface is the display container an Encoder draws into.
// It is not safe for concurrent use.
type Surface struct {
	images []*Image
}

// Append adds img to the surface.
func (s *Surface) Append(img *Image) {
	s.images = append(s.images, img)
}

// Image returns the first image on the surface, or nil.
func (s *Surface) Image() *Image {
	if len(s.images) == 0 {
		return nil
	}
	return s.images[0]
}

// Len returns the number of images on the surface.
func (s *Surface) Len() int {
	return len(s.images)
}
