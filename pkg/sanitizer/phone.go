package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers submitted without a leading "+".
const DefaultRegion = "US"

// NormalizePhone parses phone and returns it as E.164 digits without the "+",
// the form the ingestion API expects before hashing. Unparseable input returns "".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(phonenumbers.Format(parsed, phonenumbers.E164), "+")
}

// PhoneOrRaw applies NormalizePhone and falls back to the raw value when parsing fails,
// so a number the library cannot read is still hashed rather than dropped.
func PhoneOrRaw(phone string) string {
	if normalized := NormalizePhone(phone); normalized != "" {
		return normalized
	}
	return phone
}
