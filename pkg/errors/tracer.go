package errors

import "github.com/pkg/errors"

// ErrorCode identifies a class of failure inside the pipeline.
type ErrorCode string

const (
	// VendorStreamError represents a failure on the vendor streaming socket.
	VendorStreamError ErrorCode = "vendor_stream_error"
	// VendorFormatError represents an unexpected vendor response shape.
	VendorFormatError ErrorCode = "vendor_format_error"
	// PersistenceError represents a failure writing to the bar store.
	PersistenceError ErrorCode = "persistence_error"
	// RedisConfigError represents an invalid or missing Redis configuration.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents a failure connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
)

// ErrorTracer is an error carrying a message and an underlying error with a
// captured stack trace.
type ErrorTracer struct {
	Message string
	Code    ErrorCode
	Err     error
}

// NewTracer creates a new ErrorTracer with the provided message.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{
		Message: message,
	}
}

// TracerFromError creates a new ErrorTracer from an existing error, preserving
// the stack trace when the error already carries one.
func TracerFromError(err error) *ErrorTracer {
	tracer := NewTracer(err.Error())
	tracer.Err = err
	if _, ok := err.(StackTracer); !ok {
		tracer.Err = errors.WithStack(err)
	}
	return tracer
}

// WithCode attaches an ErrorCode to the tracer.
func (e *ErrorTracer) WithCode(code ErrorCode) *ErrorTracer {
	e.Code = code
	return e
}

// StackTracer is an interface that requires a StackTrace method.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// Wrap wraps an existing error into the ErrorTracer, preserving the stack trace.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	e.Err = err
	if _, ok := err.(StackTracer); !ok {
		e.Err = errors.WithStack(err)
	}
	return e
}

// StackTrace returns the stack trace of the underlying error if it implements
// StackTracer.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	err := e.Unwrap()
	if errWithStack, ok := err.(StackTracer); ok {
		return errWithStack.StackTrace()
	}
	return nil
}
