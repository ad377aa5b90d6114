package autofill

import "errors"

var (
	ErrAlreadyRunning   = errors.New("autofill session already running")
	ErrGenerationFailed = errors.New("failed to generate code")
	ErrFillFailed       = errors.New("failed to fill form")
	ErrSubmitFailed     = errors.New("failed to submit form")
)
