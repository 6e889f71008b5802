//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine on top of the gosseract client. Requires
// the Tesseract libraries at build time; gate with the "ocr" build tag.
type TesseractEngine struct {
	language      string
	psm           int
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine. language defaults
// to "eng"; psm <= 0 leaves Tesseract's default segmentation mode in place.
func NewTesseractEngine(language string, psm int) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{
		language:      language,
		psm:           psm,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs OCR over the image file at imageRef. The gosseract call has
// no native cancellation; ctx is checked before the call and the pipeline
// discards results that arrive after cancellation.
func (e *TesseractEngine) Recognize(ctx context.Context, imageRef string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	data, err := os.ReadFile(imageRef)
	if err != nil {
		return Output{}, fmt.Errorf("read image: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return Output{}, fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(e.language); err != nil {
		return Output{}, fmt.Errorf("set language: %w", err)
	}
	if e.psm > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.psm)); err != nil {
			return Output{}, fmt.Errorf("set page seg mode: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return Output{}, fmt.Errorf("tesseract: %w", err)
	}
	return Output{Text: strings.TrimSpace(text)}, nil
}
