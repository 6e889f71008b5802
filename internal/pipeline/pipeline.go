// Package pipeline orchestrates one recognition attempt end to end: quality
// pre-check, preprocessing, the engine call under a timeout/retry budget,
// then extraction, sanitization, validation and the quality report. One
// attempt may run at a time per Pipeline; concurrent calls fail fast.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/0xKimutai/IDSnap/constants"
	"github.com/0xKimutai/IDSnap/internal/common"
	"github.com/0xKimutai/IDSnap/internal/detect"
	"github.com/0xKimutai/IDSnap/internal/extract"
	"github.com/0xKimutai/IDSnap/internal/ocr"
	"github.com/0xKimutai/IDSnap/internal/quality"
	"github.com/0xKimutai/IDSnap/internal/registry"
	"github.com/0xKimutai/IDSnap/internal/sanitize"
	"github.com/0xKimutai/IDSnap/internal/validate"
)

// Config bounds the engine call and the retry loop.
type Config struct {
	EngineTimeout   time.Duration // per-attempt budget, default 30s
	MaxRetries      int           // additional attempts after the first, default 2
	RetryDelay      time.Duration // fixed inter-attempt delay, default 1s
	MinImageQuality float64       // advisory pre-check threshold, default 0.3
}

// Result is produced exactly once per invocation and is immutable after
// creation. Validation errors do not make a Result unsuccessful; only
// input, engine and busy failures do.
type Result struct {
	Success          bool
	Fields           map[string]string
	RawText          string
	Confidence       map[string]float64
	Format           constants.FormatName
	Validation       validate.Result
	Quality          quality.Report
	Error            string
	ProcessingTimeMs int64
}

// Pipeline drives the recognition flow. Obtain instances with New; each
// instance enforces its own single-flight guarantee, so independent
// pipelines (for tests, or per document source) never contaminate each
// other.
type Pipeline struct {
	cfg     Config
	logger  *slog.Logger
	engine  ocr.Engine
	prep    ocr.Preprocessor
	checker ocr.QualityChecker
	reg     *registry.Registry
	running atomic.Bool
}

// New wires a pipeline. engine is required; prep and checker may be nil, in
// which case their stages are skipped. A nil registry gets the built-in
// tables, a nil logger gets slog.Default().
func New(cfg Config, engine ocr.Engine, prep ocr.Preprocessor, checker ocr.QualityChecker, reg *registry.Registry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = registry.Default()
	}
	if cfg.EngineTimeout <= 0 {
		cfg.EngineTimeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MinImageQuality <= 0 {
		cfg.MinImageQuality = 0.3
	}
	return &Pipeline{
		cfg:     cfg,
		logger:  logger,
		engine:  engine,
		prep:    prep,
		checker: checker,
		reg:     reg,
	}
}

// Process runs one recognition attempt over imageRef. The returned Result is
// always non-nil and carries the processing time; err is non-nil only for
// terminal failures (no input, engine exhaustion, busy).
//
// Cancellation is cooperative: cancelling ctx stops the pipeline from acting
// on a late engine result, but cannot abort an engine call that has no
// native cancellation support.
func (p *Pipeline) Process(ctx context.Context, imageRef string, onProgress ProgressFunc) (*Result, error) {
	start := time.Now()
	fail := func(err error) (*Result, error) {
		return &Result{
			Success:          false,
			Error:            err.Error(),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}, err
	}

	if !p.running.CompareAndSwap(false, true) {
		return fail(common.ErrBusy)
	}
	defer p.running.Store(false)

	if strings.TrimSpace(imageRef) == "" {
		return fail(fmt.Errorf("%w: no image reference supplied", common.ErrNoInput))
	}

	prog := &progressEmitter{fn: onProgress}

	// 1) Quality pre-check. Advisory: low scores are logged, never block.
	prog.emit(constants.StageQuality, 0.1)
	if p.checker != nil {
		score, err := p.checker.Check(ctx, imageRef)
		switch {
		case err != nil:
			p.logger.Warn("pipeline.quality.check_failed", "error", err)
		case score < p.cfg.MinImageQuality:
			p.logger.Warn("pipeline.quality.low", "score", score, "threshold", p.cfg.MinImageQuality)
		}
	}

	// 2) Preprocessing. A failed preparation falls back to the original
	// capture rather than aborting the attempt.
	prog.emit(constants.StagePreprocessing, 0.25)
	ref := imageRef
	if p.prep != nil {
		prepared, err := p.prep.Prepare(ctx, imageRef)
		if err != nil {
			p.logger.Warn("pipeline.preprocess.failed", "error", err)
		} else {
			ref = prepared
		}
	}

	// 3) Recognition under timeout and retry.
	prog.emit(constants.StageOCR, 0.5)
	rawText, engineConf, err := p.recognize(ctx, ref)
	if err != nil {
		p.logger.Error("pipeline.ocr.failed", "image_ref", imageRef, "error", err)
		return fail(err)
	}
	p.logger.Debug("pipeline.ocr.ok", "bytes", len(rawText), "engine_confidence", engineConf)

	// 4) Extraction → sanitization → validation → report.
	prog.emit(constants.StageExtraction, 0.7)
	format := detect.Detect(rawText, p.reg)
	extracted := extract.Extract(rawText, format, p.reg)
	fields := sanitize.Fields(extracted.Fields)

	prog.emit(constants.StageValidation, 0.85)
	validation := validate.Validate(fields, format, time.Now().UTC())

	prog.emit(constants.StageReport, 0.95)
	completeness := quality.AssessCompleteness(fields, format)
	report := quality.GenerateReport(validation, completeness)

	prog.emit(constants.StageComplete, 1.0)

	res := &Result{
		Success:          true,
		Fields:           fields,
		RawText:          rawText,
		Confidence:       confidenceFor(fields, extracted.Confidence),
		Format:           format.Name,
		Validation:       validation,
		Quality:          report,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	p.logger.Info("pipeline.complete",
		"format", format.Name,
		"fields", len(fields),
		"errors", len(validation.Errors),
		"warnings", len(validation.Warnings),
		"score", report.Score,
		"duration_ms", res.ProcessingTimeMs,
	)
	return res, nil
}

// recognize runs the engine with the configured retry loop. Empty text and
// engine errors both consume an attempt; exhaustion is promoted to a
// terminal no-input failure.
func (p *Pipeline) recognize(ctx context.Context, imageRef string) (string, float64, error) {
	attempts := p.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", 0, ctx.Err()
			case <-time.After(p.cfg.RetryDelay):
			}
		}

		out, err := p.recognizeOnce(ctx, imageRef)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return "", 0, err
			}
			lastErr = err
			p.logger.Warn("pipeline.ocr.attempt_failed", "attempt", attempt, "error", err)
			continue
		}

		text, conf := ocr.Normalize(out)
		if text == "" {
			lastErr = errors.New("engine returned empty text")
			p.logger.Warn("pipeline.ocr.empty_text", "attempt", attempt)
			continue
		}
		return text, conf, nil
	}

	return "", 0, fmt.Errorf("%w: no usable text after %d attempts: %v",
		common.ErrNoInput, attempts, lastErr)
}

// recognizeOnce races one engine call against the per-attempt timeout. A
// result arriving after the deadline is discarded; the underlying call, if
// the engine ignores its context, runs to completion on its own goroutine.
func (p *Pipeline) recognizeOnce(ctx context.Context, imageRef string) (ocr.Output, error) {
	tctx, cancel := context.WithTimeout(ctx, p.cfg.EngineTimeout)
	defer cancel()

	type outcome struct {
		out ocr.Output
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		out, err := p.engine.Recognize(tctx, imageRef)
		ch <- outcome{out: out, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			return ocr.Output{}, fmt.Errorf("%w: %v", common.ErrEngine, o.err)
		}
		return o.out, nil
	case <-tctx.Done():
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return ocr.Output{}, fmt.Errorf("%w: no answer within %s", common.ErrEngine, p.cfg.EngineTimeout)
		}
		return ocr.Output{}, tctx.Err()
	}
}

// confidenceFor drops confidence entries for fields the sanitizer removed,
// keeping the two maps keyed identically.
func confidenceFor(fields map[string]string, conf map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(fields))
	for key := range fields {
		if c, ok := conf[key]; ok {
			out[key] = c
		}
	}
	return out
}
