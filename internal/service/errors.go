package service

import "errors"

// ErrMalformedInput marks a request body that does not decode to a ChatRequest
var ErrMalformedInput = errors.New("malformed input")
