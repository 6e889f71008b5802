//go:build !ocr

package ocr

import (
	"context"
	"errors"
)

// ErrOCRNotEnabled is returned when the Tesseract engine is used without the
// "ocr" build tag. Rebuild with -tags ocr (Tesseract must be installed).
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// TesseractEngine is the stub used when OCR support is not compiled in.
type TesseractEngine struct{}

// NewTesseractEngine returns the stub engine; every call fails with
// ErrOCRNotEnabled.
func NewTesseractEngine(language string, psm int) *TesseractEngine {
	return &TesseractEngine{}
}

func (e *TesseractEngine) Recognize(ctx context.Context, imageRef string) (Output, error) {
	return Output{}, ErrOCRNotEnabled
}
