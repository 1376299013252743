package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordRequired = errors.New("password is required")
	ErrWeakPassword     = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrCodeRequired     = errors.New("code is required")
	ErrTicketRequired   = errors.New("two-factor ticket is required")

	ErrPlanCodeRequired = errors.New("plan code is required")
	ErrInvalidPlanCode  = errors.New("plan code must be lowercase letters, digits and dashes")
	ErrPlanNameRequired = errors.New("plan name is required")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrInvalidCurrency  = errors.New("currency must be a 3-letter ISO 4217 code")
	ErrInvalidInterval  = errors.New("interval must be \"month\" or \"year\"")
	ErrInvalidTrialDays = errors.New("trial days must be between 0 and 365")
	ErrNoFieldsToUpdate = errors.New("at least one field must be provided for update")
)

// validationErrors is the exhaustive sentinel list backing IsValidationError.
var validationErrors = []error{
	ErrUnsupportedType,
	ErrUnknownField,
	ErrEmailRequired,
	ErrInvalidEmail,
	ErrPasswordRequired,
	ErrWeakPassword,
	ErrPasswordTooLong,
	ErrCodeRequired,
	ErrTicketRequired,
	ErrPlanCodeRequired,
	ErrInvalidPlanCode,
	ErrPlanNameRequired,
	ErrInvalidPrice,
	ErrInvalidCurrency,
	ErrInvalidInterval,
	ErrInvalidTrialDays,
	ErrNoFieldsToUpdate,
}

// IsValidationError reports whether err wraps any of this package's
// sentinels. Transport layers use it to map validation failures to a 400
// without enumerating every rule.
func IsValidationError(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
