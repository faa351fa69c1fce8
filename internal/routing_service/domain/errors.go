package domain

import "errors"

var (
	// ErrMalformedRuleEncoding indicates a compacted rule string that cannot
	// be decoded. Callers should surface this as a configuration error, not
	// a delivery failure.
	ErrMalformedRuleEncoding = errors.New("malformed rule encoding")
	// ErrConfiguration indicates sender-id restriction settings that cannot
	// be parsed into username/pattern groups.
	ErrConfiguration = errors.New("invalid configuration")
)
