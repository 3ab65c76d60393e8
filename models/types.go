package models

// APIResponse represents a standard API response
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SelectTypeRequest represents a content type selection
type SelectTypeRequest struct {
	Type string `json:"type"`
}

// SelectSizeRequest represents a size option selection
type SelectSizeRequest struct {
	Size int `json:"size"`
}

// GenerateRequest represents a generate action. Empty members keep the
// session's current selection.
type GenerateRequest struct {
	Type       string            `json:"type,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	Size       int               `json:"size,omitempty"`
	ColorDark  string            `json:"colorDark,omitempty"`
	ColorLight string            `json:"colorLight,omitempty"`
}

// GenerateResponse represents the result of a generate action
type GenerateResponse struct {
	Status          string `json:"status"`
	Type            string `json:"type,omitempty"`
	Image           string `json:"image,omitempty"` // data:image/png;base64 URI
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	DownloadEnabled bool   `json:"download_enabled"`
	Alert           string `json:"alert,omitempty"` // validation message for the user
	Error           string `json:"error,omitempty"`
}

// StateResponse represents the generator state of a session
type StateResponse struct {
	Type            string            `json:"type"`
	Fields          map[string]string `json:"fields"`
	Size            int               `json:"size"`
	Sizes           []int             `json:"sizes"`
	ColorDark       string            `json:"colorDark"`
	ColorLight      string            `json:"colorLight"`
	DownloadEnabled bool              `json:"download_enabled"`
	Generations     int               `json:"generations"`
	Image           string            `json:"image,omitempty"`
}

// HistoryResponse represents a page of generation history
type HistoryResponse struct {
	Status      string       `json:"status"`
	Generations []Generation `json:"generations"`
}
