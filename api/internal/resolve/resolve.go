package resolve

import (
	"context"
	"errors"
	"strings"
)

// ErrEmpty means no usable text came out of the input: blank/whitespace text,
// an OCR failure, or an OCR result with nothing in it. Callers re-prompt.
var ErrEmpty = errors.New("resolve: no readable text")

// Extractor turns an image into plain text. Any failure is treated as "no text".
type Extractor interface {
	Extract(ctx context.Context, image []byte) (string, error)
}

// Input is a tagged value: exactly one of Text or Image is set.
type Input struct {
	Text  string
	Image []byte
}

func TextInput(s string) Input  { return Input{Text: s} }
func ImageInput(b []byte) Input { return Input{Image: b} }
func (in Input) IsImage() bool  { return in.Image != nil }

// Resolver normalizes heterogeneous user input into plain text, so every
// downstream stage only ever sees a non-empty trimmed string.
type Resolver struct {
	OCR Extractor
}

func New(ocr Extractor) *Resolver { return &Resolver{OCR: ocr} }

func (r *Resolver) Resolve(ctx context.Context, in Input) (string, error) {
	if in.IsImage() {
		text, err := r.OCR.Extract(ctx, in.Image)
		if err != nil {
			return "", ErrEmpty
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", ErrEmpty
		}
		return text, nil
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}
