package domain

import "errors"

// Error classes surfaced by providers and the bridge.
var (
	ErrConfig              = errors.New("configuration missing")
	ErrTransport           = errors.New("transport failure")
	ErrTimeout             = errors.New("timed out")
	ErrParse               = errors.New("unparseable response")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrPlatformUnsupported = errors.New("platform unsupported")
)

// ErrorKind is a short name for an error class, used in logs.
type ErrorKind string

const (
	ErrorKindNone        ErrorKind = ""
	ErrorKindConfig      ErrorKind = "config"
	ErrorKindTransport   ErrorKind = "transport"
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindParse       ErrorKind = "parse"
	ErrorKindQuota       ErrorKind = "quota"
	ErrorKindUnsupported ErrorKind = "unsupported"
	ErrorKindUnknown     ErrorKind = "unknown"
)

// ClassifyError names the class of err.
func ClassifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrConfig):
		return ErrorKindConfig
	case errors.Is(err, ErrQuotaExceeded):
		return ErrorKindQuota
	case errors.Is(err, ErrTimeout):
		return ErrorKindTimeout
	case errors.Is(err, ErrParse):
		return ErrorKindParse
	case errors.Is(err, ErrTransport):
		return ErrorKindTransport
	case errors.Is(err, ErrPlatformUnsupported):
		return ErrorKindUnsupported
	default:
		return ErrorKindUnknown
	}
}
