// Package preprocess prepares captured images for recognition: grayscale
// conversion, contrast stretching and upscaling of small captures. It is the
// default implementation of the pipeline's Preprocessor contract; callers
// with their own enhancement stage can supply it instead.
package preprocess

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// minWidth is the width below which captures are upscaled; Tesseract
// degrades sharply on small text.
const minWidth = 1000

type Config struct {
	// WorkDir receives the prepared PNGs. Defaults to the OS temp dir.
	WorkDir string
}

type Preprocessor struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &Preprocessor{cfg: cfg, logger: logger}
}

// Prepare reads the image at imageRef, converts it to a contrast-stretched
// grayscale PNG (upscaled when the capture is small) and returns the path of
// the prepared file.
func (p *Preprocessor) Prepare(ctx context.Context, imageRef string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(imageRef)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	gray := toGray(src)
	stretchContrast(gray)

	var out image.Image = gray
	if w := gray.Bounds().Dx(); w < minWidth {
		scale := float64(minWidth) / float64(w)
		dst := image.NewGray(image.Rect(0, 0, minWidth, int(float64(gray.Bounds().Dy())*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), gray, gray.Bounds(), draw.Over, nil)
		out = dst
		p.logger.Debug("preprocess.upscaled", "from_width", w, "to_width", minWidth)
	}

	name := fmt.Sprintf("idsnap-prep-%s.png", filepath.Base(imageRef))
	outPath := filepath.Join(p.cfg.WorkDir, name)
	of, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create prepared image: %w", err)
	}
	defer of.Close()
	if err := png.Encode(of, out); err != nil {
		return "", fmt.Errorf("encode prepared image: %w", err)
	}
	return outPath, nil
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// stretchContrast linearly remaps pixel intensities to the full [0,255]
// range in place. A flat image (min == max) is left untouched.
func stretchContrast(img *image.Gray) {
	min, max := uint8(255), uint8(0)
	for _, px := range img.Pix {
		if px < min {
			min = px
		}
		if px > max {
			max = px
		}
	}
	if min >= max {
		return
	}
	scale := 255.0 / float64(max-min)
	for i, px := range img.Pix {
		img.Pix[i] = uint8(float64(px-min) * scale)
	}
}

// QualityCheck estimates capture quality in [0,1] from resolution and
// exposure spread. Advisory only; the pipeline logs low scores but proceeds.
func (p *Preprocessor) Check(ctx context.Context, imageRef string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := os.Open(imageRef)
	if err != nil {
		return 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}
	gray := toGray(src)

	score := 0.0
	if gray.Bounds().Dx() >= minWidth {
		score += 0.5
	} else {
		score += 0.5 * float64(gray.Bounds().Dx()) / float64(minWidth)
	}

	min, max := uint8(255), uint8(0)
	for _, px := range gray.Pix {
		if px < min {
			min = px
		}
		if px > max {
			max = px
		}
	}
	score += 0.5 * float64(max-min) / 255.0
	return score, nil
}
