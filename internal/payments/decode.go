package payments

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
)

// CallbackData is the JSON payload eSewa base64-encodes into the `data`
// query parameter of its return redirect.
type CallbackData struct {
	Status          string `json:"status"`
	TransactionCode string `json:"transaction_code"`
	TransactionUUID string `json:"transaction_uuid"`
	Oid             string `json:"oid"`
	RefID           string `json:"refId"`
	TotalAmount     string `json:"total_amount"`
	ProductCode     string `json:"product_code"`
	SignedFields    string `json:"signed_field_names"`
	Signature       string `json:"signature"`
}

// DecodeCallbackData unwraps the gateway's `data` parameter. The value
// arrives URL-escaped and in either base64 alphabet, frequently with its
// padding stripped, so decoding normalizes before unmarshalling. A decode
// failure is not fatal to the caller; correlation falls back to raw params.
func DecodeCallbackData(raw string) (*CallbackData, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	if unescaped, err := url.QueryUnescape(trimmed); err == nil {
		trimmed = unescaped
	}

	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(trimmed)
	normalized = strings.TrimRight(normalized, "=")
	if pad := len(normalized) % 4; pad != 0 {
		normalized += strings.Repeat("=", 4-pad)
	}

	decoded, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return nil, err
	}

	var data CallbackData
	if err := json.Unmarshal(decoded, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ResolveTransactionRef picks the settlement reference with a fixed
// precedence: the decoded transaction code wins, then the decoded
// transaction UUID, then the legacy decoded identifiers (`oid`, `refId`),
// then the raw query parameters.
func ResolveTransactionRef(decoded *CallbackData, params url.Values) string {
	if decoded != nil {
		for _, candidate := range []string{
			decoded.TransactionCode,
			decoded.TransactionUUID,
			decoded.Oid,
			decoded.RefID,
		} {
			if ref := strings.TrimSpace(candidate); ref != "" {
				return ref
			}
		}
	}
	for _, key := range []string{"transaction_uuid", "oid", "refId"} {
		if ref := strings.TrimSpace(params.Get(key)); ref != "" {
			return ref
		}
	}
	return ""
}

// IsSuccessful interprets the callback as settled. When the payload carries
// an explicit status it is authoritative; otherwise the presence of any
// transaction reference, or of a decodable payload at all, counts as success.
func IsSuccessful(decoded *CallbackData, transactionRef string) bool {
	if decoded != nil && decoded.Status != "" {
		status := strings.ToUpper(strings.TrimSpace(decoded.Status))
		return status == "COMPLETE" || status == "SUCCESS"
	}
	if transactionRef != "" {
		return true
	}
	return decoded != nil
}
