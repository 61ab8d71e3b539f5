package kjson

import "fmt"

// ErrKind is a machine-readable classification of a parse or decode failure.
type ErrKind string

const (
	ErrSyntax          ErrKind = "syntax_error"
	ErrUnexpectedToken ErrKind = "unexpected_token"
	ErrInvalidNumber   ErrKind = "invalid_number"
	ErrInvalidString   ErrKind = "invalid_string"
	ErrInvalidEscape   ErrKind = "invalid_escape"
	ErrInvalidUUID     ErrKind = "invalid_uuid"
	ErrInvalidInstant  ErrKind = "invalid_instant"
	ErrInvalidDuration ErrKind = "invalid_duration"
	ErrDepthExceeded   ErrKind = "depth_exceeded"
	ErrSizeExceeded    ErrKind = "size_exceeded"
	ErrIncompleteInput ErrKind = "incomplete_input"
	ErrTrailingData    ErrKind = "trailing_data"
	ErrInvalidBinary   ErrKind = "invalid_binary"
	ErrOverflow        ErrKind = "overflow"
	ErrUnknownTag      ErrKind = "unknown_tag"
)

// ParseError reports a text parse failure with the byte offset of the fault.
type ParseError struct {
	Kind    ErrKind
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("kjson: %s at offset %d: %s", e.Kind, e.Offset, e.Message)
}

func parseErr(kind ErrKind, offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind:    kind,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}

// DecodeError reports a kJSONB decode failure with the byte offset of the
// fault.
type DecodeError struct {
	Kind    ErrKind
	Offset  int
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("kjsonb: %s at offset %d: %s", e.Kind, e.Offset, e.Message)
}

func decodeErr(kind ErrKind, offset int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{
		Kind:    kind,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}
