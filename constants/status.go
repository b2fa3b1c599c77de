package constants

// StageStatus is the progress marker held by a pipeline session.
type StageStatus string

const (
	StageStatusEmpty      StageStatus = "EMPTY"      // nothing run yet
	StageStatusExtracted  StageStatus = "EXTRACTED"  // stage 1 completed (text available)
	StageStatusNormalized StageStatus = "NORMALIZED" // stage 2 completed (record available)
	StageStatusRendered   StageStatus = "RENDERED"   // stage 4 completed (pdf available)
	StageStatusFailed     StageStatus = "FAILED"     // last stage failed; earlier results kept
)

// Extraction methods reported by the text extractor.
const (
	MethodPDFText = "pdf-text"
	MethodPDFOCR  = "pdf-ocr"
	MethodNone    = "none"
)
