package types

// EncodingError reports a value that cannot be serialized to the wire
// format, such as oversize contract code or an out-of-range amount.
// Matchable with errors.As.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "cannot encode: " + e.Reason
}
