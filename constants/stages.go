package constants

// Stage identifies a pipeline phase for progress reporting.
type Stage string

// Stages fire in this order for every invocation.
const (
	StageQuality       Stage = "quality"
	StagePreprocessing Stage = "preprocessing"
	StageOCR           Stage = "ocr"
	StageExtraction    Stage = "extraction"
	StageValidation    Stage = "validation"
	StageReport        Stage = "report"
	StageComplete      Stage = "complete"
)

// QualityLevel is the coarse verdict attached to a quality report.
type QualityLevel string

const (
	QualityExcellent QualityLevel = "Excellent"
	QualityGood      QualityLevel = "Good"
	QualityFair      QualityLevel = "Fair"
	QualityPoor      QualityLevel = "Poor"
)
