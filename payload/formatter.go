// Package payload builds the strings encoded into QR codes.
package payload

import (
	"fmt"
	"strings"
)

// FieldSet maps a field name to the raw value typed by the user.
// Missing keys read as empty.
type FieldSet map[string]string

// Get returns the raw value of name.
func (fs FieldSet) Get(name string) string {
	if fs == nil {
		return ""
	}
	return fs[name]
}

// Clone returns an independent copy of fs.
func (fs FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}

// Wi-Fi security tokens understood by phone cameras.
const (
	SecurityWPA    = "WPA"
	SecurityWEP    = "WEP"
	SecurityNoPass = "nopass"
)

// ParseSecurity normalises a Wi-Fi security selection. Empty selects WPA.
func ParseSecurity(s string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", SecurityWPA:
		return SecurityWPA, nil
	case SecurityWEP:
		return SecurityWEP, nil
	case "NOPASS":
		return SecurityNoPass, nil
	}
	return "", fmt.Errorf("unknown wifi security %q", s)
}

// ValidationError is returned when the required field of a content type is empty.
type ValidationError struct {
	Type    ContentType
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing %s: %s", e.Type, e.Field, e.Message)
}

// Format builds the payload for ct from fields. It reads only the fields of
// ct's group and has no other inputs.
func Format(ct ContentType, fields FieldSet) (string, error) {
	if !ct.Valid() {
		return "", fmt.Errorf("unknown content type %q", string(ct))
	}

	required := strings.TrimSpace(fields.Get(ct.RequiredField()))
	if required == "" {
		return "", &ValidationError{
			Type:    ct,
			Field:   ct.RequiredField(),
			Message: ct.AlertMessage(),
		}
	}

	switch ct {
	case ContentTypeURL, ContentTypeText:
		return required, nil

	case ContentTypeEmail:
		out := "mailto:" + required
		if subject := fields.Get(FieldEmailSubject); subject != "" {
			out += "?subject=" + EncodeURIComponent(subject)
		}
		return out, nil

	case ContentTypePhone:
		return "tel:" + required, nil

	case ContentTypeSMS:
		out := "sms:" + required
		if body := fields.Get(FieldSMSMessage); body != "" {
			out += "?body=" + EncodeURIComponent(body)
		}
		return out, nil

	case ContentTypeWiFi:
		security := fields.Get(FieldWiFiSecurity)
		if security == "" {
			security = SecurityWPA
		}
		return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;;", security, required, fields.Get(FieldWiFiPassword)), nil

	case ContentTypeVCard:
		var b strings.Builder
		b.WriteString("BEGIN:VCARD\nVERSION:3.0\nFN:")
		b.WriteString(required)
		for _, line := range []struct{ prefix, field string }{
			{"TEL:", FieldVCardPhone},
			{"EMAIL:", FieldVCardEmail},
			{"ORG:", FieldVCardCompany},
		} {
			if v := fields.Get(line.field); v != "" {
				b.WriteString("\n")
				b.WriteString(line.prefix)
				b.WriteString(v)
			}
		}
		b.WriteString("\nEND:VCARD")
		return b.String(), nil
	}

	return "", fmt.Errorf("unknown content type %q", string(ct))
}
