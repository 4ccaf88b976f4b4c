package customer

import (
	"fmt"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhone parses phone in the context of region (ISO 3166 alpha-2,
// used when the number has no leading +) and returns it in E.164 form.
func NormalizePhone(phone, region string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	p, err := libphonenumber.Parse(phone, strings.ToUpper(region))
	if err != nil {
		return "", fmt.Errorf("phone number %q: %w", phone, err)
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number %q is not valid", phone)
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}
