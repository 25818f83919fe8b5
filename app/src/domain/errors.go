package domain

import (
	"errors"
	"fmt"
)

// ErrDegenerateRange marks a dimension whose batch minimum equals its maximum.
// The normalizer handles it internally; it never leaves the core package.
var ErrDegenerateRange = errors.New("degenerate range")

// TransportError reports that the source could not be reached (dial, timeout, reset).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a non-success status from the source.
type ProtocolError struct {
	StatusCode int
	URL        string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %s returned status %d", e.URL, e.StatusCode)
}

// DecodeError reports a body that could not be turned into the expected shape.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Error kinds used as metric labels.
const (
	KindTransport = "transport"
	KindProtocol  = "protocol"
	KindDecode    = "decode"
	KindUnknown   = "unknown"
)

// ErrorKind classifies a fetch error into the fetch-layer taxonomy.
func ErrorKind(err error) string {
	var (
		transportErr *TransportError
		protocolErr  *ProtocolError
		decodeErr    *DecodeError
	)
	switch {
	case errors.As(err, &protocolErr):
		return KindProtocol
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}
