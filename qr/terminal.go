package qr

import (
	"io"

	"github.com/mdp/qrterminal/v3"
)

// WriteTerminal prints text as a half-block QR code for terminals.
// Quartile has no terminal equivalent and is drawn at High.
func WriteTerminal(w io.Writer, text string, level CorrectLevel) {
	switch level {
	case CorrectLow:
		qrterminal.GenerateHalfBlock(text, qrterminal.L, w)
	case CorrectMedium:
		qrterminal.GenerateHalfBlock(text, qrterminal.M, w)
	default:
		qrterminal.GenerateHalfBlock(text, qrterminal.H, w)
	}
}
