package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dvelkov/invoice-expert/internal/ponumber"
	"go.uber.org/zap"
)

// Normalizer turns the raw AI text payload into a Record. The service is
// asked for a bare JSON object but routinely wraps it in Markdown code
// fences or pads it with whitespace, so parsing is defensive.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new response normalizer.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize unwraps and parses payload into a Record.
//
// Every field has an explicit default: missing strings become "", a missing
// TotalAmount becomes 0. An empty PONumber is derived from the full text;
// a non-numeric PONumber is re-cleaned, keeping the original value when
// nothing better can be recovered. A payload that does not parse as a JSON
// object fails with ErrMalformedResponse.
func (n *Normalizer) Normalize(payload string) (*Record, error) {
	unwrapped := unwrapJSON(payload)

	var fields map[string]any
	if err := json.Unmarshal([]byte(unwrapped), &fields); err != nil {
		n.logger.Warn("Failed to parse extraction payload",
			zap.Error(err),
			zap.Int("payload_length", len(payload)))
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	// A literal null unmarshals into a nil map without error; the payload
	// must be an object.
	if fields == nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformedResponse)
	}

	rec := &Record{
		VendorName:    stringField(fields, "VendorName"),
		InvoiceNumber: stringField(fields, "InvoiceNumber"),
		Currency:      stringField(fields, "Currency"),
		TotalAmount:   numberField(fields, "TotalAmount"),
		InvoiceDate:   stringField(fields, "InvoiceDate"),
		PONumber:      stringField(fields, "PONumber"),
		FullText:      stringField(fields, "full_text"),
	}

	rec.PONumber = n.resolvePONumber(rec.PONumber, rec.FullText)

	return rec, nil
}

// resolvePONumber applies the fallback and re-normalization policy for the
// purchase order field.
func (n *Normalizer) resolvePONumber(candidate, fullText string) string {
	if candidate == "" {
		return ponumber.Resolve(fullText)
	}
	if isDigits(candidate) {
		return candidate
	}
	if cleaned := ponumber.Clean(candidate); cleaned != "" {
		return cleaned
	}
	// Last resort: keep what the service reported.
	n.logger.Debug("Keeping non-numeric purchase order value",
		zap.String("po_number", candidate))
	return candidate
}

// unwrapJSON removes Markdown code fence markers and surrounding whitespace.
func unwrapJSON(payload string) string {
	s := strings.ReplaceAll(payload, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		// The model occasionally returns numeric identifiers unquoted.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func numberField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
