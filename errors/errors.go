package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrInvalidRoom       = fmt.Errorf("invalid room")
	ErrEmptyIdentity     = fmt.Errorf("identity must not be empty")
	ErrReservedIdentity  = fmt.Errorf("identity is reserved")
	ErrUnknownConnection = fmt.Errorf("unknown connection")

	ErrEmptyMessage      = fmt.Errorf("message text must not be empty")
	ErrAdminToAdmin      = fmt.Errorf("sender and receiver cannot both be admin")
	ErrSelfAddressed     = fmt.Errorf("sender and receiver must differ")
	ErrNoConversation    = fmt.Errorf("message does not belong to a user/admin conversation")
	ErrPersistFailed     = fmt.Errorf("message could not be saved")
	ErrIdentityMismatch  = fmt.Errorf("identity does not match the authenticated connection")
	ErrForbidden         = fmt.Errorf("operation not allowed for this connection")
	ErrUnknownEvent      = fmt.Errorf("unknown event")
	ErrMalformedPayload  = fmt.Errorf("malformed payload")
	ErrSinkFull          = fmt.Errorf("send buffer full")
	ErrSinkClosed        = fmt.Errorf("connection closed")
	ErrMissingToken      = fmt.Errorf("missing token")
	ErrInvalidToken      = fmt.Errorf("invalid token")
	ErrRateLimited       = fmt.Errorf("too many events")
	ErrGeneration        = fmt.Errorf("text generation failed")
	ErrGenerationAuth    = fmt.Errorf("text generation rejected the credentials or configuration")
	ErrGenerationQuota   = fmt.Errorf("text generation quota exceeded")
	ErrEmptyGeneration   = fmt.Errorf("text generation returned no text")
	ErrGeneratorDisabled = fmt.Errorf("text generation is not configured")
)
