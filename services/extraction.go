package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ExtractedFields are the EMD values an OCR service read from an uploaded
// instrument (DD, BG, FDR receipt). Nil means the field was not found.
type ExtractedFields struct {
	Amount         *float64 `json:"amount,omitempty"`
	PaymentMode    *string  `json:"payment_mode,omitempty"`
	BankName       *string  `json:"bank_name,omitempty"`
	InstrumentNo   *string  `json:"reference_number,omitempty"`
	InstrumentDate *string  `json:"document_date,omitempty"`
	ExpiryDate     *string  `json:"expiry_date,omitempty"`
}

// Empty reports whether nothing was extracted.
func (f ExtractedFields) Empty() bool {
	return f.Amount == nil && f.PaymentMode == nil && f.BankName == nil &&
		f.InstrumentNo == nil && f.InstrumentDate == nil && f.ExpiryDate == nil
}

// MergeExtracted copies every extracted field into emd. Fields that were
// not extracted leave the current value alone.
func MergeExtracted(emd *EMDDetails, f ExtractedFields) {
	if f.Amount != nil {
		emd.Amount = *f.Amount
	}
	if f.PaymentMode != nil {
		emd.PaymentMode = strings.ToUpper(strings.TrimSpace(*f.PaymentMode))
	}
	if f.BankName != nil {
		emd.BankName = strings.TrimSpace(*f.BankName)
	}
	if f.InstrumentNo != nil {
		emd.InstrumentNo = strings.TrimSpace(*f.InstrumentNo)
	}
	if f.InstrumentDate != nil {
		emd.InstrumentDate = normalizeDate(*f.InstrumentDate)
	}
	if f.ExpiryDate != nil {
		emd.ExpiryDate = normalizeDate(*f.ExpiryDate)
	}
}

// normalizeDate accepts the date layouts OCR services commonly return and
// rewrites them as YYYY-MM-DD. Unknown layouts pass through for validation
// to flag.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "02/01/2006", "02-01-2006", "2006-01-02T15:04:05Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// DocumentExtractor reads EMD fields out of an uploaded document.
type DocumentExtractor interface {
	Extract(ctx context.Context, filename string, r io.Reader) (ExtractedFields, error)
}

// HTTPExtractor calls an extraction service that accepts a multipart
// "file" upload on POST {baseURL}/extract and answers with ExtractedFields
// as JSON.
type HTTPExtractor struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPExtractor builds a client for baseURL. A zero timeout means no
// client-side timeout beyond the request context.
func NewHTTPExtractor(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *HTTPExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type extractionError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Extract uploads the document and decodes the fields the service found.
func (x *HTTPExtractor) Extract(ctx context.Context, filename string, r io.Reader) (ExtractedFields, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("extract: build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return ExtractedFields{}, fmt.Errorf("extract: read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return ExtractedFields{}, fmt.Errorf("extract: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/extract", &body)
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("extract: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if x.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+x.apiKey)
	}

	start := time.Now()
	resp, err := x.client.Do(req)
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("extract: call service: %w", err)
	}
	defer resp.Body.Close()

	x.logger.Debug("document extraction finished",
		"file", filename,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("extract: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr extractionError
		msg := ""
		if json.Unmarshal(payload, &apiErr) == nil {
			msg = apiErr.Message
			if msg == "" {
				msg = apiErr.Error
			}
		}
		return ExtractedFields{}, &CollaboratorError{
			Message: msg,
			Err:     fmt.Errorf("extract: service returned %d", resp.StatusCode),
		}
	}

	var fields ExtractedFields
	if err := json.Unmarshal(payload, &fields); err != nil {
		return ExtractedFields{}, fmt.Errorf("extract: decode response: %w", err)
	}
	return fields, nil
}

// CollaboratorError wraps a failure from an external collaborator together
// with a message that may be shown to the user.
type CollaboratorError struct {
	Message string
	Err     error
}

func (e *CollaboratorError) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// UserMessage returns the message meant for the user, if any.
func (e *CollaboratorError) UserMessage() string { return e.Message }

// UserMessage extracts a user-facing message from err, falling back to
// fallback when err carries none.
func UserMessage(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}
