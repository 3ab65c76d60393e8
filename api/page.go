package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"

	"github.com/jaliph/qrrapido/controller"
	"github.com/jaliph/qrrapido/models"
	"github.com/jaliph/qrrapido/payload"
	"github.com/jaliph/qrrapido/utils"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

var typeLabels = map[payload.ContentType]string{
	payload.ContentTypeURL:   "URL",
	payload.ContentTypeText:  "Texto",
	payload.ContentTypeEmail: "Email",
	payload.ContentTypePhone: "Teléfono",
	payload.ContentTypeSMS:   "SMS",
	payload.ContentTypeWiFi:  "WiFi",
	payload.ContentTypeVCard: "vCard",
}

var securityLabels = []struct{ value, label string }{
	{payload.SecurityWPA, "WPA/WPA2"},
	{payload.SecurityWEP, "WEP"},
	{payload.SecurityNoPass, "Sin contraseña"},
}

type option struct {
	Value  string
	Label  string
	Active bool
}

type sizeOption struct {
	Value  int
	Active bool
}

// pageView is the data rendered into the generator page.
type pageView struct {
	CSRFField       template.HTML
	Alert           string
	Types           []option
	Securities      []option
	Sizes           []sizeOption
	ColorDark       string
	ColorLight      string
	Image           template.URL
	Width           int
	Height          int
	DownloadEnabled bool

	state controller.State
}

func (v pageView) IsActive(ct string) bool { return string(v.state.ActiveType) == ct }

func (v pageView) Field(name string) string { return v.state.Fields.Get(name) }

func newPageView(r *http.Request, s controller.State, alert string) pageView {
	v := pageView{
		CSRFField:       csrf.TemplateField(r),
		Alert:           alert,
		ColorDark:       s.ColorDark,
		ColorLight:      s.ColorLight,
		DownloadEnabled: s.DownloadEnabled,
		state:           s,
	}
	for _, ct := range payload.ContentTypes {
		v.Types = append(v.Types, option{Value: string(ct), Label: typeLabels[ct], Active: ct == s.ActiveType})
	}

	security := s.Fields.Get(payload.FieldWiFiSecurity)
	if security == "" {
		security = payload.SecurityWPA
	}
	for _, sl := range securityLabels {
		v.Securities = append(v.Securities, option{Value: sl.value, Label: sl.label, Active: sl.value == security})
	}

	for _, size := range controller.Sizes {
		v.Sizes = append(v.Sizes, sizeOption{Value: int(size), Active: size == s.Size})
	}
	if s.Image != nil {
		// Data URLs are produced by qr.Image and never come from user input.
		v.Image = template.URL(s.Image.DataURL())
		v.Width = s.Image.Width
		v.Height = s.Image.Height
	}
	return v
}

// HandleIndex handles GET /
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.renderPage(w, r, http.StatusOK, session.Controller.Snapshot(), "")
}

// HandleFormGenerate handles POST /generate, the form fallback of the page.
func (h *Handler) HandleFormGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	session := h.session(w, r)
	c := session.Controller

	request, err := formRequest(r)
	if err == nil {
		err = applySelections(c, request)
	}
	if err != nil {
		h.renderPage(w, r, http.StatusBadRequest, c.Snapshot(), err.Error())
		return
	}

	if _, err := h.generate(session); err != nil {
		var verr *payload.ValidationError
		alert := "No se pudo generar el código QR"
		if errors.As(err, &verr) {
			alert = verr.Message
		}
		h.renderPage(w, r, http.StatusUnprocessableEntity, c.Snapshot(), alert)
		return
	}
	h.renderPage(w, r, http.StatusOK, c.Snapshot(), "")
}

// formRequest reads the page form into a generate request. Every field the
// page knows is copied so switching types keeps what was typed.
func formRequest(r *http.Request) (request models.GenerateRequest, err error) {
	request.Type = r.PostForm.Get("qrType")
	request.ColorDark = r.PostForm.Get("colorDark")
	request.ColorLight = r.PostForm.Get("colorLight")
	if size := r.PostForm.Get("size"); size != "" {
		if request.Size, err = strconv.Atoi(size); err != nil {
			return request, controller.ErrInvalidSize
		}
	}

	request.Fields = map[string]string{}
	for _, ct := range payload.ContentTypes {
		for _, name := range ct.Fields() {
			if values, ok := r.PostForm[name]; ok && len(values) > 0 {
				request.Fields[name] = values[0]
			}
		}
	}
	return request, nil
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, s controller.State, alert string) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageView(r, s, alert)); err != nil {
		utils.L().Error("Failed to render page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
