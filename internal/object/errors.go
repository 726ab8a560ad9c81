package object

import "fmt"

// ErrorCode classifies programming errors against the object model.
type ErrorCode uint8

const (
	ErrInvalidHandle ErrorCode = iota + 1
	ErrUseAfterFree
	ErrDoubleFree
	ErrHeapExhausted
	ErrUnknownKind
	ErrNilSymbolKey
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidHandle:
		return "invalid handle"
	case ErrUseAfterFree:
		return "use after free"
	case ErrDoubleFree:
		return "double free"
	case ErrHeapExhausted:
		return "heap exhausted"
	case ErrUnknownKind:
		return "unknown object kind"
	case ErrNilSymbolKey:
		return "nil symbol key"
	default:
		return fmt.Sprintf("ErrorCode(%d)", c)
	}
}

// ObjectError is the panic payload for misuse of the heap or the facade.
// Internal methods themselves never raise it; they decline with false.
type ObjectError struct {
	Code    ErrorCode
	Message string
}

func (e *ObjectError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches ObjectErrors by code so callers can use errors.Is with a template.
func (e *ObjectError) Is(target error) bool {
	t, ok := target.(*ObjectError)
	return ok && t != nil && e != nil && t.Code == e.Code
}
