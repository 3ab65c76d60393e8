package controller

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jaliph/qrrapido/payload"
	"github.com/jaliph/qrrapido/qr"
)

// fakeEncoder records every call and draws a placeholder image.
type fakeEncoder struct {
	calls []qr.Options
	err   error
}

func (f *fakeEncoder) Encode(s *qr.Surface, opts qr.Options) error {
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return f.err
	}
	s.Append(qr.NewImage([]byte("mockImageData"), opts.Width, opts.Height))
	return nil
}

type alerts []string

func (a *alerts) Alert(message string) { *a = append(*a, message) }

func TestInitialState(t *testing.T) {
	c := New(&fakeEncoder{})
	if !c.IsActive(payload.ContentTypeURL) {
		t.Errorf("active type = %q, want url", c.ActiveType())
	}
	if !c.IsSizeActive(SizeMedium) {
		t.Errorf("active size = %d, want 300", c.Size())
	}
	if dark, light := c.Colors(); dark != "#000000" || light != "#ffffff" {
		t.Errorf("colors = %q, %q", dark, light)
	}
	if c.DownloadEnabled() {
		t.Error("download enabled before any generation")
	}
	if c.Image() != nil {
		t.Error("image present before any generation")
	}
}

func TestSelectTypeActivatesExactlyOne(t *testing.T) {
	c := New(&fakeEncoder{})
	for _, ct := range payload.ContentTypes {
		if err := c.SelectType(ct); err != nil {
			t.Fatalf("SelectType(%s): %v", ct, err)
		}
		active := 0
		for _, other := range payload.ContentTypes {
			if c.IsActive(other) {
				active++
				if other != ct {
					t.Errorf("after selecting %s, %s is active", ct, other)
				}
			}
		}
		if active != 1 {
			t.Errorf("after selecting %s, %d groups active", ct, active)
		}
	}
	if err := c.SelectType("fax"); err == nil {
		t.Error("SelectType(fax) succeeded")
	}
	if !c.IsActive(payload.ContentTypeVCard) {
		t.Error("failed selection changed the active type")
	}
}

func TestSelectTypeKeepsFieldValues(t *testing.T) {
	enc := &fakeEncoder{}
	c := New(enc)
	c.SetField(payload.FieldURL, "https://keep.me")
	c.SelectType(payload.ContentTypeText)
	c.SelectType(payload.ContentTypeURL)
	if _, err := c.Generate(); err != nil {
		t.Fatal(err)
	}
	if got := enc.calls[0].Text; got != "https://keep.me" {
		t.Errorf("text = %q", got)
	}
}

func TestSelectSize(t *testing.T) {
	c := New(&fakeEncoder{})
	for _, s := range Sizes {
		if err := c.SelectSize(s); err != nil {
			t.Fatalf("SelectSize(%d): %v", s, err)
		}
		for _, other := range Sizes {
			if got, want := c.IsSizeActive(other), other == s; got != want {
				t.Errorf("after selecting %d, IsSizeActive(%d) = %v", s, other, got)
			}
		}
	}
	if err := c.SelectSize(250); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("SelectSize(250) error = %v, want ErrInvalidSize", err)
	}
	if c.Size() != SizeLarge {
		t.Errorf("failed selection changed size to %d", c.Size())
	}
}

func TestGenerateURL(t *testing.T) {
	enc := &fakeEncoder{}
	c := New(enc)
	c.SetField(payload.FieldURL, "https://example.com")

	gen, err := c.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gen.Image == nil || gen.Image != c.Image() {
		t.Fatal("Generate returned no current image")
	}
	if gen.Payload != "https://example.com" || gen.Type != payload.ContentTypeURL || gen.Size != SizeMedium {
		t.Errorf("generation = %+v", gen)
	}

	want := []qr.Options{{
		Text:         "https://example.com",
		Width:        300,
		Height:       300,
		ColorDark:    "#000000",
		ColorLight:   "#ffffff",
		CorrectLevel: qr.CorrectHigh,
	}}
	if diff := cmp.Diff(want, enc.calls); diff != "" {
		t.Errorf("encoder calls mismatch (-want +got):\n%s", diff)
	}
	if !c.DownloadEnabled() {
		t.Error("download not enabled after generation")
	}
}

func TestGenerateUsesSelectedSizeAndColors(t *testing.T) {
	enc := &fakeEncoder{}
	c := New(enc)
	c.SelectSize(SizeSmall)
	if err := c.SetColors("#FF0000", "#00ff00"); err != nil {
		t.Fatal(err)
	}
	c.SetField(payload.FieldURL, "https://test.com")
	if _, err := c.Generate(); err != nil {
		t.Fatal(err)
	}
	got := enc.calls[0]
	if got.Width != 200 || got.Height != 200 {
		t.Errorf("size = %dx%d, want 200x200", got.Width, got.Height)
	}
	if got.ColorDark != "#ff0000" || got.ColorLight != "#00ff00" {
		t.Errorf("colors = %q, %q", got.ColorDark, got.ColorLight)
	}
}

func TestSetColorsRejectsInvalid(t *testing.T) {
	c := New(&fakeEncoder{})
	if err := c.SetColors("#000000", "white"); !errors.Is(err, qr.ErrInvalidColor) {
		t.Errorf("SetColors error = %v", err)
	}
	if dark, light := c.Colors(); dark != "#000000" || light != "#ffffff" {
		t.Errorf("colors changed to %q, %q", dark, light)
	}
}

func TestGeneratePayloads(t *testing.T) {
	tests := []struct {
		ct     payload.ContentType
		fields payload.FieldSet
		want   string
	}{
		{payload.ContentTypeEmail, payload.FieldSet{"email": "test@example.com", "emailSubject": "Test Subject"}, "mailto:test@example.com?subject=Test%20Subject"},
		{payload.ContentTypeWiFi, payload.FieldSet{"wifiSSID": "TestNetwork", "wifiSecurity": "WEP", "wifiPassword": ""}, "WIFI:T:WEP;S:TestNetwork;P:;;"},
		{payload.ContentTypeVCard, payload.FieldSet{"vcardName": "Jane Doe"}, "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nEND:VCARD"},
		{payload.ContentTypeSMS, payload.FieldSet{"smsPhone": "+34600000000", "smsMessage": "Hello SMS"}, "sms:+34600000000?body=Hello%20SMS"},
	}
	for _, tt := range tests {
		enc := &fakeEncoder{}
		c := New(enc)
		c.SelectType(tt.ct)
		c.SetFields(tt.fields)
		if _, err := c.Generate(); err != nil {
			t.Fatalf("%s: %v", tt.ct, err)
		}
		if got := enc.calls[0].Text; got != tt.want {
			t.Errorf("%s text = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestGenerateMissingRequiredField(t *testing.T) {
	var shown alerts
	enc := &fakeEncoder{}
	c := New(enc, WithNotifier(&shown))

	_, err := c.Generate()
	var verr *payload.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Generate error = %v, want ValidationError", err)
	}
	if diff := cmp.Diff([]string{"Por favor, introduce una URL"}, []string(shown)); diff != "" {
		t.Errorf("alerts mismatch (-want +got):\n%s", diff)
	}
	if len(enc.calls) != 0 {
		t.Errorf("encoder called %d times", len(enc.calls))
	}
	if c.DownloadEnabled() {
		t.Error("download enabled after failed generation")
	}
}

func TestFailedGenerationKeepsPreviousArtifact(t *testing.T) {
	var shown alerts
	enc := &fakeEncoder{}
	c := New(enc, WithNotifier(&shown))
	c.SetField(payload.FieldURL, "https://first.com")
	first, err := c.Generate()
	if err != nil {
		t.Fatal(err)
	}

	c.SelectType(payload.ContentTypeText)
	if _, err := c.Generate(); err == nil {
		t.Fatal("Generate with empty text succeeded")
	}
	if diff := cmp.Diff([]string{"Por favor, introduce un texto"}, []string(shown)); diff != "" {
		t.Errorf("alerts mismatch (-want +got):\n%s", diff)
	}
	if c.Image() != first.Image {
		t.Error("failed generation replaced the artifact")
	}
	if !c.DownloadEnabled() {
		t.Error("failed generation disabled download")
	}
}

func TestRegenerationReplacesArtifact(t *testing.T) {
	enc := &fakeEncoder{}
	c := New(enc)
	c.SetField(payload.FieldURL, "https://first.com")
	if _, err := c.Generate(); err != nil {
		t.Fatal(err)
	}
	c.SetField(payload.FieldURL, "https://second.com")
	second, err := c.Generate()
	if err != nil {
		t.Fatal(err)
	}

	if n := c.surface.Len(); n != 1 {
		t.Errorf("surface holds %d images, want 1", n)
	}
	if c.Image() != second.Image {
		t.Error("current image is not the newest one")
	}
	if len(enc.calls) != 2 {
		t.Errorf("encoder called %d times, want 2", len(enc.calls))
	}
	if !c.DownloadEnabled() {
		t.Error("download disabled after regeneration")
	}
	if got := c.Snapshot().Generations; got != 2 {
		t.Errorf("Generations = %d, want 2", got)
	}
}

func TestEncoderFailure(t *testing.T) {
	enc := &fakeEncoder{err: errors.New("content too long to encode")}
	c := New(enc)
	c.SetField(payload.FieldURL, "https://example.com")
	if _, err := c.Generate(); err == nil {
		t.Fatal("Generate succeeded with failing encoder")
	}
	if c.DownloadEnabled() {
		t.Error("download enabled after encoder failure")
	}
}

func TestEncoderFailureKeepsPreviousArtifact(t *testing.T) {
	enc := &fakeEncoder{}
	c := New(enc)
	c.SetField(payload.FieldURL, "https://first.com")
	first, err := c.Generate()
	if err != nil {
		t.Fatal(err)
	}

	enc.err = errors.New("content too long to encode")
	c.SetField(payload.FieldURL, "https://second.com")
	if _, err := c.Generate(); err == nil {
		t.Fatal("Generate succeeded with failing encoder")
	}
	if c.Image() != first.Image {
		t.Error("encoder failure replaced the artifact")
	}
	if n := c.surface.Len(); n != 1 {
		t.Errorf("surface holds %d images, want 1", n)
	}
	if !c.DownloadEnabled() {
		t.Error("encoder failure disabled download")
	}

	var got *qr.Image
	err = c.Download(DownloaderFunc(func(_ string, img *qr.Image) error {
		got = img
		return nil
	}))
	if err != nil {
		t.Fatalf("Download after encoder failure: %v", err)
	}
	if got != first.Image {
		t.Error("downloaded image is not the previous artifact")
	}
}

func TestDownload(t *testing.T) {
	c := New(&fakeEncoder{})

	called := false
	d := DownloaderFunc(func(filename string, img *qr.Image) error {
		called = true
		return nil
	})
	if err := c.Download(d); !errors.Is(err, ErrNoArtifact) {
		t.Errorf("Download before generation error = %v, want ErrNoArtifact", err)
	}
	if called {
		t.Error("downloader invoked without an artifact")
	}

	c.SetField(payload.FieldURL, "https://test.com")
	if _, err := c.Generate(); err != nil {
		t.Fatal(err)
	}

	var gotName, gotURL string
	err := c.Download(DownloaderFunc(func(filename string, img *qr.Image) error {
		gotName, gotURL = filename, img.DataURL()
		return nil
	}))
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if gotName != "qrrapido-codigo.png" {
		t.Errorf("filename = %q", gotName)
	}
	if want := qr.NewImage([]byte("mockImageData"), 0, 0).DataURL(); gotURL != want {
		t.Errorf("data URL = %q, want %q", gotURL, want)
	}
}

func TestWithOptions(t *testing.T) {
	c := New(&fakeEncoder{}, WithSize(SizeLarge), WithColors("#111111", "#eeeeee"))
	s := c.Snapshot()
	if s.Size != SizeLarge || s.ColorDark != "#111111" || s.ColorLight != "#eeeeee" {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestParseSize(t *testing.T) {
	for _, n := range []int{200, 300, 400} {
		if s, err := ParseSize(n); err != nil || int(s) != n {
			t.Errorf("ParseSize(%d) = %d, %v", n, s, err)
		}
	}
	for _, n := range []int{0, -300, 301, 1000} {
		if _, err := ParseSize(n); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("ParseSize(%d) error = %v", n, err)
		}
	}
}
