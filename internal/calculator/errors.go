package calculator

import "errors"

// ErrInsufficientData is returned when a series is shorter than an indicator's window.
var ErrInsufficientData = errors.New("insufficient data")

var errNonPositivePeriod = errors.New("period must be positive")
