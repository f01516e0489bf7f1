package errors

import "fmt"

var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidUsername    = fmt.Errorf("invalid username")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrInvalidHashFormat  = fmt.Errorf("invalid hash format")
	ErrServerRunning      = fmt.Errorf("server already running")
	ErrLineTooLong        = fmt.Errorf("line exceeds maximum length")
	ErrUnexpectedKind     = fmt.Errorf("unexpected message kind")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrUnsafeRecord       = fmt.Errorf("record cannot be stored safely")
)
