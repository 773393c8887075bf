package extractor

import "errors"

var (
	// ErrSyntax is returned when a file does not parse cleanly.
	ErrSyntax = errors.New("invalid syntax")
	// ErrUndecodable is returned for input that is not valid UTF-8.
	ErrUndecodable = errors.New("file is not valid UTF-8")
)
