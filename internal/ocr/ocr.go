// Package ocr turns image bytes into text. The default backend forwards the
// image to a remote OCR inference endpoint; a local tesseract backend exists
// for offline use.
package ocr

import (
	"context"
	"time"
)

const (
	MethodRemote    = "remote-ocr"
	MethodTesseract = "tesseract"
	MethodGosseract = "gosseract"
)

// Result is the outcome of one OCR call.
type Result struct {
	Text     string
	Method   string
	Duration time.Duration
}

// Recognizer is the OCR collaborator the extraction flow depends on.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (Result, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, image []byte) (Result, error)

func (f RecognizerFunc) Recognize(ctx context.Context, image []byte) (Result, error) {
	return f(ctx, image)
}
