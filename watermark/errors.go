package watermark

import "errors"

// Error taxonomy shared by all methods. Methods wrap these sentinels
// with fmt.Errorf("...: %w", ...) so callers can branch with errors.Is
// while still seeing method-specific detail.
var (
	// ErrSecretNotFound reports that no recoverable watermark exists
	// in the document.
	ErrSecretNotFound = errors.New("watermark: secret not found")

	// ErrInvalidKey reports that the supplied key failed to
	// authenticate or decrypt the watermark.
	ErrInvalidKey = errors.New("watermark: invalid key")

	// ErrMalformed reports a watermark record that was located but
	// could not be decoded.
	ErrMalformed = errors.New("watermark: malformed payload")

	// ErrEmptySecret rejects embedding an empty secret.
	ErrEmptySecret = errors.New("watermark: secret must not be empty")
)
