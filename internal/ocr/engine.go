// Package ocr defines the recognition-engine contract consumed by the
// pipeline and normalizes the different result shapes engines produce.
// The engine itself is a black box: image reference in, text out.
package ocr

import "context"

// Block is one recognized text region with an optional confidence.
type Block struct {
	Text       string
	Confidence float64 // 0 when the engine reports none
}

// Output is the union of the result shapes a recognition engine may return:
// a plain string, a string with a scalar confidence, or a list of text
// blocks with per-block confidence.
type Output struct {
	Text       string
	Confidence float64
	Blocks     []Block
}

// Engine converts an image reference into raw text. Implementations without
// native cancellation may ignore ctx; the pipeline discards late results.
type Engine interface {
	Recognize(ctx context.Context, imageRef string) (Output, error)
}

// Preprocessor produces a recognition-ready image reference from a capture.
type Preprocessor interface {
	Prepare(ctx context.Context, imageRef string) (string, error)
}

// QualityChecker scores a capture in [0,1] before recognition. Low scores
// are advisory; they never block processing.
type QualityChecker interface {
	Check(ctx context.Context, imageRef string) (float64, error)
}
