package wizard

import "errors"

// Validation errors for collected input.
var (
	ErrDomainRequired   = errors.New("domain is required")
	ErrPasswordRequired = errors.New("database password is required")
	ErrValueRequired    = errors.New("value is required")

	errIdentifierInvalid = errors.New("must be 1-32 letters, digits or underscores")
	errEmailInvalid      = errors.New("must be an email address")
	errPasswordInvalid   = errors.New("must not contain line breaks or quotes")
)
