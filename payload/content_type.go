package payload

import (
	"fmt"
	"strings"
)

// ContentType selects which field group is read and how the payload is built.
type ContentType string

const (
	ContentTypeURL   ContentType = "url"
	ContentTypeText  ContentType = "text"
	ContentTypeEmail ContentType = "email"
	ContentTypePhone ContentType = "phone"
	ContentTypeSMS   ContentType = "sms"
	ContentTypeWiFi  ContentType = "wifi"
	ContentTypeVCard ContentType = "vcard"
)

// ContentTypes lists every content type in the order the page offers them.
var ContentTypes = []ContentType{
	ContentTypeURL,
	ContentTypeText,
	ContentTypeEmail,
	ContentTypePhone,
	ContentTypeSMS,
	ContentTypeWiFi,
	ContentTypeVCard,
}

// Field names, matching the input ids of the generator page.
const (
	FieldURL          = "url"
	FieldText         = "text"
	FieldEmail        = "email"
	FieldEmailSubject = "emailSubject"
	FieldPhone        = "phone"
	FieldSMSPhone     = "smsPhone"
	FieldSMSMessage   = "smsMessage"
	FieldWiFiSSID     = "wifiSSID"
	FieldWiFiPassword = "wifiPassword"
	FieldWiFiSecurity = "wifiSecurity"
	FieldVCardName    = "vcardName"
	FieldVCardPhone   = "vcardPhone"
	FieldVCardEmail   = "vcardEmail"
	FieldVCardCompany = "vcardCompany"
)

var fieldGroups = map[ContentType][]string{
	ContentTypeURL:   {FieldURL},
	ContentTypeText:  {FieldText},
	ContentTypeEmail: {FieldEmail, FieldEmailSubject},
	ContentTypePhone: {FieldPhone},
	ContentTypeSMS:   {FieldSMSPhone, FieldSMSMessage},
	ContentTypeWiFi:  {FieldWiFiSSID, FieldWiFiPassword, FieldWiFiSecurity},
	ContentTypeVCard: {FieldVCardName, FieldVCardPhone, FieldVCardEmail, FieldVCardCompany},
}

var alertMessages = map[ContentType]string{
	ContentTypeURL:   "Por favor, introduce una URL",
	ContentTypeText:  "Por favor, introduce un texto",
	ContentTypeEmail: "Por favor, introduce un email",
	ContentTypePhone: "Por favor, introduce un número de teléfono",
	ContentTypeSMS:   "Por favor, introduce un número de teléfono",
	ContentTypeWiFi:  "Por favor, introduce el nombre de la red (SSID)",
	ContentTypeVCard: "Por favor, introduce un nombre",
}

// ParseContentType converts a type tag such as "wifi" into a ContentType.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.Valid() {
		return "", fmt.Errorf("unknown content type %q", s)
	}
	return ct, nil
}

// Valid reports whether ct is one of the known content types.
func (ct ContentType) Valid() bool {
	_, ok := fieldGroups[ct]
	return ok
}

// Fields returns the names of the fields in ct's group, required field first.
func (ct ContentType) Fields() []string {
	return append([]string(nil), fieldGroups[ct]...)
}

// RequiredField returns the name of the field that must be non-empty.
func (ct ContentType) RequiredField() string {
	if fields := fieldGroups[ct]; len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// AlertMessage returns the user-facing message shown when the required field is empty.
func (ct ContentType) AlertMessage() string {
	return alertMessages[ct]
}

func (ct ContentType) String() string {
	return string(ct)
}
