package errors

import (
	"fmt"
)

var (
	ErrMalformedJob = fmt.Errorf("malformed job")
	ErrNotFound     = fmt.Errorf("not found")
	ErrLeaseLost    = fmt.Errorf("lease lost")
	ErrEmptyResult  = fmt.Errorf("empty result")
	ErrMaxExceeded  = fmt.Errorf("max length exceeded")
	ErrInvalidArg   = fmt.Errorf("invalid arg")
	ErrNotSupported = fmt.Errorf("not supported")
)
