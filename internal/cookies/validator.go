package cookies

import (
	"fmt"
	"time"
)

// Validation status values
const (
	StatusValid   = "valid"
	StatusExpired = "expired"
	StatusInvalid = "invalid"
)

// ValidationResult contains the result of cookie validation
type ValidationResult struct {
	IsValid   bool
	Status    string
	Message   string
	ExpiresAt time.Time
}

// ValidateFile validates a cookie file by checking expiration timestamps
func ValidateFile(path string) (*ValidationResult, error) {
	cookies, err := ParseFile(path)
	if err != nil {
		return &ValidationResult{
			Status:  StatusInvalid,
			Message: fmt.Sprintf("failed to parse cookie file: %v", err),
		}, nil
	}

	return ValidateExpiration(cookies, time.Now()), nil
}

// ValidateExpiration checks how many cookies are expired at the given
// instant. A file only counts as expired when every dated cookie is
// past due: auxiliary cookies routinely expire while the auth cookies
// remain usable.
func ValidateExpiration(cookies []NetscapeCookie, now time.Time) *ValidationResult {
	if len(cookies) == 0 {
		return &ValidationResult{
			Status:  StatusInvalid,
			Message: "no cookies found",
		}
	}

	expired := 0
	dated := 0
	for _, cookie := range cookies {
		if cookie.Expiration > 0 {
			dated++
		}
		if cookie.Expired(now) {
			expired++
		}
	}

	expiresAt := EarliestExpiration(cookies)

	if dated > 0 && expired == dated {
		return &ValidationResult{
			Status:    StatusExpired,
			Message:   fmt.Sprintf("all %d cookies expired", len(cookies)),
			ExpiresAt: expiresAt,
		}
	}

	msg := fmt.Sprintf("%d cookies valid", len(cookies))
	if expired > 0 {
		msg = fmt.Sprintf("%d of %d cookies expired", expired, len(cookies))
	} else if !expiresAt.IsZero() {
		msg = fmt.Sprintf("all %d cookies valid, expires %s", len(cookies), expiresAt.Format("2006-01-02"))
	}

	return &ValidationResult{
		IsValid:   true,
		Status:    StatusValid,
		Message:   msg,
		ExpiresAt: expiresAt,
	}
}
