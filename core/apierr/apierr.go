package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds. Use errors.Is to classify an error returned by any unichat
// package.
var (
	// ErrAPIClient is the generic client failure. Every client-side kind
	// (invalid parameter, unsupported api type, missing credential, response
	// conversion) also matches it.
	ErrAPIClient = errors.New("api client error")

	// ErrConfigLoad means a configuration resource is missing or unparsable.
	ErrConfigLoad = errors.New("config load error")

	// ErrNotFound means a provider, config index, attribute or endpoint does
	// not exist in the loaded catalog.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParameter means the caller passed an empty, out-of-range or
	// malformed argument.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedAPIType means no transport is registered for an api type.
	ErrUnsupportedAPIType = errors.New("unsupported api type")

	// ErrCredentialNotFound means a secret could not be resolved.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrResponseConversion means a transport received a response it could
	// not turn into the normalized schema.
	ErrResponseConversion = errors.New("response conversion error")
)

// clientKinds are the kinds that also satisfy errors.Is(err, ErrAPIClient).
var clientKinds = map[error]bool{
	ErrInvalidParameter:   true,
	ErrUnsupportedAPIType: true,
	ErrCredentialNotFound: true,
	ErrResponseConversion: true,
}

// Error is the concrete error type of the taxonomy. Kind is one of the
// sentinel errors above, Op names the failing operation and Err, when set, is
// the underlying cause.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

// New builds an *Error of the given kind with a formatted message.
func New(kind error, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around cause.
func Wrap(kind error, op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Is reports the ErrAPIClient family membership of client-side kinds.
func (e *Error) Is(target error) bool {
	return target == ErrAPIClient && clientKinds[e.Kind]
}

// IsKnown reports whether err, or any error it wraps, belongs to the taxonomy.
func IsKnown(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// KindOf returns the kind of the outermost taxonomy error wrapped by err, or
// nil when err is unclassified.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

// List renders names as a bracketed, quoted list for error messages,
// e.g. ["openai" "requests"].
func List[T ~string](names []T) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", string(n))
	}
	return "[" + strings.Join(quoted, " ") + "]"
}
