package ocr

import (
	"bytes"
	"fmt"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/ledongthuc/pdf"
)

// readTextLayer extracts the embedded text of every page with ledongthuc/pdf.
// The reader panics on some malformed files; that is reported as an error.
func readTextLayer(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return pages, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ValidatePDF checks if the data looks like a PDF by its magic bytes.
func ValidatePDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte(constants.PDFMagic))
}
