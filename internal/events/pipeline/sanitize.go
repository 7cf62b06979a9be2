package pipeline

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	eventerrors "capirelay/internal/events/errors"
	"capirelay/pkg/model"
)

const (
	FieldClientIP = "client_ip_address"
	FieldFBP      = "fbp"
	FieldValue    = "custom_data.value"

	keyValue    = "value"
	keyCurrency = "currency"
)

// FieldValidator performs the single-field format checks sanitizing relies on.
type FieldValidator interface {
	IsValidIP(address string) bool
	IsValidFBP(value string) bool
}

// Correction records a best-effort field that was blanked or substituted
// instead of failing the request.
type Correction struct {
	Field  string
	Value  string
	Reason string
}

type SanitizedContext struct {
	ClientIP        string
	ClientUserAgent string
	FBP             string
	FBC             string
	CustomData      model.CustomData
	Corrections     []Correction
}

// Sanitize validates the request signals and cleans custom attributes. Bad IPs,
// bad fbp cookies and non-numeric values are corrected; a value without a
// currency is a ValidationError. correlationID is only used to attribute errors.
func Sanitize(fields FieldValidator, ev *model.RawEvent, signals RequestSignals, correlationID string) (SanitizedContext, error) {
	sc := SanitizedContext{
		ClientIP:        signals.ClientIP,
		ClientUserAgent: signals.UserAgent,
		FBP:             ev.UserData.FBP,
		FBC:             ev.UserData.FBC,
	}

	if sc.ClientIP != "" && !fields.IsValidIP(sc.ClientIP) {
		sc.Corrections = append(sc.Corrections, Correction{
			Field:  FieldClientIP,
			Value:  sc.ClientIP,
			Reason: "invalid IP address",
		})
		sc.ClientIP = ""
	}

	if sc.FBP != "" && !fields.IsValidFBP(sc.FBP) {
		sc.Corrections = append(sc.Corrections, Correction{
			Field:  FieldFBP,
			Value:  sc.FBP,
			Reason: "invalid _fbp format",
		})
		sc.FBP = ""
	}

	cleaned := model.NewCustomData()
	for _, attr := range ev.CustomData.Entries() {
		if isNullLike(attr.Value) {
			continue
		}
		cleaned.Set(attr.Key, attr.Value)
	}

	if raw, ok := cleaned.Get(keyValue); ok {
		value, ok := toFloat(raw)
		if !ok {
			sc.Corrections = append(sc.Corrections, Correction{
				Field:  FieldValue,
				Value:  describe(raw),
				Reason: "value is not numeric, substituted 0.0",
			})
		}
		cleaned.Set(keyValue, value)

		currency, _ := cleaned.Get(keyCurrency)
		if isBlank(currency) {
			return SanitizedContext{}, eventerrors.CurrencyRequired(correlationID)
		}
	}

	sc.CustomData = cleaned
	return sc, nil
}

func isNullLike(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.EqualFold(s, "null")
}

// toFloat coerces a decoded JSON scalar. Non-finite results count as failures
// because they cannot be encoded back to JSON.
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func describe(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
