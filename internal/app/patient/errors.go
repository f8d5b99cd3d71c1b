package patient

import "errors"

// ErrInvalidInput is returned before any request is sent.
var ErrInvalidInput = errors.New("invalid input")
