package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/entity"
	"github.com/crholidays/voucher-standardizer/internal/llm"
)

// temperature is fixed so the same text yields the same record.
const temperature = 0

var _ llm.VoucherExtractor = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	Messages       []chatMessage  `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractVoucher implements llm.VoucherExtractor with a single text-only
// chat/completions request. There are no retries.
func (c *Client) ExtractVoucher(ctx context.Context, text string) (entity.VoucherRecord, []byte, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	key := c.apiKey()
	if key == "" {
		c.log.Error("llm.extract.missing_api_key", "req_id", rid)
		return entity.VoucherRecord{}, nil, common.NewAppError(common.CodeConfig, "OPENAI_API_KEY is not set", common.ErrMissingConfig)
	}

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", temperature,
		"text_len", len(text),
	)

	body := chatRequest{
		Model:          c.cfg.Model,
		Temperature:    temperature,
		ResponseFormat: map[string]any{"type": "json_object"},
		Messages: []chatMessage{
			{Role: "user", Content: llm.BuildVoucherPrompt(text)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, map[string]string{"Authorization": "Bearer " + key}, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.VoucherRecord{}, nil, modelCallError(err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.VoucherRecord{}, nil, modelCallError(fmt.Errorf("decode openai response: %w", err))
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.VoucherRecord{}, nil, modelCallError(errors.New("no choices in openai response"))
	}

	content := llm.StripCodeFence(cc.Choices[0].Message.Content)
	rawContent := []byte(content)

	normalized, changed, err := llm.NormalizeVoucherJSON(rawContent, c.log)
	if err != nil {
		c.log.Error("llm.extract.invalid_json",
			"req_id", rid, "error", err, "content", content,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.VoucherRecord{}, rawContent, malformedError("model answer is not valid JSON", err)
	}
	if err := llm.ValidateVoucherJSON(normalized); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", content,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.VoucherRecord{}, rawContent, malformedError("model answer does not match the voucher schema", err)
	}

	var out entity.VoucherRecord
	if err := json.Unmarshal(normalized, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.VoucherRecord{}, rawContent, malformedError("decode voucher record", err)
	}
	out = out.Normalized()

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"hotel", out.HotelName,
		"check_in", out.CheckInDate,
		"check_out", out.CheckOutDate,
		"rooms", len(out.Rooms),
		"notes", len(out.AdditionalInformation),
		"confirmed", out.HasConfirmation(),
		"adjusted", len(changed),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

func modelCallError(err error) error {
	return common.NewAppError(common.CodeModelCall, "chat completion request failed", fmt.Errorf("%w: %w", common.ErrModelCall, err))
}

func malformedError(msg string, err error) error {
	return common.NewAppError(common.CodeMalformed, msg, fmt.Errorf("%w: %w", common.ErrMalformedOutput, err))
}
