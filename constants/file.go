package constants

import "strings"

// PDFMagic is the header every PDF file starts with.
const PDFMagic = "%PDF-"

// Asset locations, relative to the configured asset directory.
const (
	TemplateRelPath = "templates/voucher_template.html"
	LogoRelPath     = "logo.png"
)

// OutputFilenamePrefix and OutputTimestampLayout build standardized_voucher_<YYYYMMDD_HHMMSS>.pdf.
const (
	OutputFilenamePrefix  = "standardized_voucher_"
	OutputTimestampLayout = "20060102_150405"
)

// MaxUploadBytes caps uploaded source vouchers (50MB).
const MaxUploadBytes = 50 << 20

// AllowedExtensions holds the accepted source voucher extensions.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without dot) is an accepted source format.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
