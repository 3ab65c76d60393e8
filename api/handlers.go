package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jaliph/qrrapido/controller"
	"github.com/jaliph/qrrapido/database"
	"github.com/jaliph/qrrapido/models"
	"github.com/jaliph/qrrapido/payload"
	"github.com/jaliph/qrrapido/qr"
	"github.com/jaliph/qrrapido/store"
	"github.com/jaliph/qrrapido/utils"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "qrrapido_session"

const defaultHistoryLimit = 50

// Handler handles HTTP requests
type Handler struct {
	sessions      *store.SessionStore
	history       database.History // nil when history is disabled
	secureCookies bool
}

// NewHandler creates a new API handler. history may be nil.
func NewHandler(sessions *store.SessionStore, history database.History, secureCookies bool) *Handler {
	return &Handler{
		sessions:      sessions,
		history:       history,
		secureCookies: secureCookies,
	}
}

// session returns the caller's session, starting one and setting the cookie
// when the request carries no live session.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *store.Session {
	var token string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		token = cookie.Value
	}

	session, created := h.sessions.GetOrCreate(token)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    session.Token,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return session
}

// HandleHealth handles the /health endpoint
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.APIResponse{
		Status:  "ok",
		Message: "QRRapido server is running",
	})
}

// HandleGetState handles GET /api/state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	writeJSON(w, http.StatusOK, stateResponse(session.Controller.Snapshot()))
}

// HandleSelectType handles POST /api/type
func (h *Handler) HandleSelectType(w http.ResponseWriter, r *http.Request) {
	var request models.SelectTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	ct, err := payload.ParseContentType(request.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := h.session(w, r)
	if err := session.Controller.SelectType(ct); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(session.Controller.Snapshot()))
}

// HandleSelectSize handles POST /api/size
func (h *Handler) HandleSelectSize(w http.ResponseWriter, r *http.Request) {
	var request models.SelectSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	size, err := controller.ParseSize(request.Size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := h.session(w, r)
	if err := session.Controller.SelectSize(size); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(session.Controller.Snapshot()))
}

// HandleGenerate handles POST /api/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var request models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, models.GenerateResponse{Status: "error", Error: "Invalid JSON format"})
		return
	}

	session := h.session(w, r)
	c := session.Controller
	if err := applySelections(c, request); err != nil {
		writeJSON(w, http.StatusBadRequest, models.GenerateResponse{
			Status:          "error",
			Error:           err.Error(),
			DownloadEnabled: c.DownloadEnabled(),
		})
		return
	}

	gen, err := h.generate(session)
	if err != nil {
		var verr *payload.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, models.GenerateResponse{
				Status:          "error",
				Type:            string(verr.Type),
				Alert:           verr.Message,
				DownloadEnabled: c.DownloadEnabled(),
			})
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, models.GenerateResponse{
			Status:          "error",
			Error:           err.Error(),
			DownloadEnabled: c.DownloadEnabled(),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateResponse{
		Status:          "success",
		Type:            string(gen.Type),
		Image:           gen.Image.DataURL(),
		Width:           gen.Image.Width,
		Height:          gen.Image.Height,
		DownloadEnabled: c.DownloadEnabled(),
	})
}

// generate runs the session's generate action and records it in the history.
func (h *Handler) generate(session *store.Session) (*controller.Generation, error) {
	gen, err := session.Controller.Generate()
	if err != nil {
		return nil, err
	}

	if h.history != nil {
		record := &models.Generation{
			Session:       session.Token,
			ContentType:   string(gen.Type),
			Size:          int(gen.Size),
			PayloadLength: len(gen.Payload),
			CreatedAt:     time.Now(),
		}
		if err := h.history.RecordGeneration(record); err != nil {
			utils.L().Warn("Failed to record generation", "error", err)
		}
	}
	return gen, nil
}

// HandleDownload handles GET /api/download
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	err := session.Controller.Download(controller.DownloaderFunc(func(filename string, img *qr.Image) error {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(img.PNG())))
		w.WriteHeader(http.StatusOK)
		_, err := w.Write(img.PNG())
		return err
	}))
	if errors.Is(err, controller.ErrNoArtifact) {
		writeError(w, http.StatusConflict, "Genera un código QR antes de descargarlo")
		return
	}
	if err != nil {
		utils.L().Warn("Failed to write download", "error", err)
	}
}

// HandleGetHistory handles GET /api/history
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "History is disabled")
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	generations, err := h.history.RecentGenerations(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get history: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, models.HistoryResponse{Status: "success", Generations: generations})
}

// HandleGetStats handles GET /api/stats
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "History is disabled")
		return
	}

	stats, err := h.history.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get stats: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// selections holds the validated members of a generate request. Zero
// members keep the session's current selection.
type selections struct {
	contentType payload.ContentType
	fields      payload.FieldSet
	size        controller.Size
	colorDark   string
	colorLight  string
}

// parseSelections validates every member of request without touching any session.
func parseSelections(request models.GenerateRequest) (sel selections, err error) {
	if request.Type != "" {
		if sel.contentType, err = payload.ParseContentType(request.Type); err != nil {
			return sel, err
		}
	}

	if len(request.Fields) > 0 {
		sel.fields = payload.FieldSet(request.Fields).Clone()
		if security, ok := sel.fields[payload.FieldWiFiSecurity]; ok {
			if sel.fields[payload.FieldWiFiSecurity], err = payload.ParseSecurity(security); err != nil {
				return sel, err
			}
		}
	}

	if request.Size != 0 {
		if sel.size, err = controller.ParseSize(request.Size); err != nil {
			return sel, err
		}
	}

	if request.ColorDark != "" {
		if sel.colorDark, err = qr.NormalizeColor(request.ColorDark); err != nil {
			return sel, err
		}
	}
	if request.ColorLight != "" {
		if sel.colorLight, err = qr.NormalizeColor(request.ColorLight); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

// applySelections validates the selections carried by a generate request and,
// only when all of them are valid, copies them into c.
func applySelections(c *controller.Controller, request models.GenerateRequest) error {
	sel, err := parseSelections(request)
	if err != nil {
		return err
	}

	if sel.contentType != "" {
		if err := c.SelectType(sel.contentType); err != nil {
			return err
		}
	}
	if sel.fields != nil {
		c.SetFields(sel.fields)
	}
	if sel.size != 0 {
		if err := c.SelectSize(sel.size); err != nil {
			return err
		}
	}
	if sel.colorDark != "" || sel.colorLight != "" {
		dark, light := c.Colors()
		if sel.colorDark != "" {
			dark = sel.colorDark
		}
		if sel.colorLight != "" {
			light = sel.colorLight
		}
		if err := c.SetColors(dark, light); err != nil {
			return err
		}
	}
	return nil
}

func stateResponse(s controller.State) models.StateResponse {
	sizes := make([]int, 0, len(controller.Sizes))
	for _, size := range controller.Sizes {
		sizes = append(sizes, int(size))
	}
	resp := models.StateResponse{
		Type:            string(s.ActiveType),
		Fields:          s.Fields,
		Size:            int(s.Size),
		Sizes:           sizes,
		ColorDark:       s.ColorDark,
		ColorLight:      s.ColorLight,
		DownloadEnabled: s.DownloadEnabled,
		Generations:     s.Generations,
	}
	if s.Image != nil {
		resp.Image = s.Image.DataURL()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.L().Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.APIResponse{Status: "error", Error: message})
}
