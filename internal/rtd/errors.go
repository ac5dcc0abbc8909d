package rtd

import "fmt"

// TransportError covers dial, write, read and timeout failures. The
// affected cycle or symbol is skipped and previous data retained; it is
// never fatal.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rtd transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means the feed answered, but not with what we asked
// for: missing response prefix or too few tokens. Treated as "no data
// for this symbol".
type ProtocolError struct {
	Symbol string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rtd protocol: %s: %s", e.Symbol, e.Reason)
}

// DecodeError means a mandatory numeric field failed locale parsing.
// The whole symbol is rejected; no partial Quote is ever emitted.
type DecodeError struct {
	Symbol string
	Field  string
	Raw    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rtd decode: %s: field %s unparsable (%q)", e.Symbol, e.Field, e.Raw)
}
