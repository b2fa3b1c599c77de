package llm

import (
	"context"

	"github.com/crholidays/voucher-standardizer/internal/entity"
)

// VoucherExtractor is the interface the pipeline depends on to turn raw
// voucher text into a VoucherRecord.
//
// The returned bytes are the model's raw JSON content (after code-fence
// stripping). They are returned even on malformed output so callers can
// surface them for diagnosis.
type VoucherExtractor interface {
	ExtractVoucher(ctx context.Context, text string) (entity.VoucherRecord, []byte /*rawJSON*/, error)
}
