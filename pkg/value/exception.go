package value

import "fmt"

// Throw is the payload of an exception value: what failed, a short label
// for programmatic matching, a numeric code and the producing runtime's
// stacktrace when one was available.
type Throw struct {
	Message    string
	Label      string
	Code       int64
	Stacktrace string
}

// NewThrow builds an exception payload.
func NewThrow(message, label string, code int64) *Throw {
	return &Throw{Message: message, Label: label, Code: code}
}

// Error satisfies the error interface so exception payloads can unwind
// through Go call chains unchanged.
func (t *Throw) Error() string {
	if t.Label != "" {
		return fmt.Sprintf("%s: %s", t.Label, t.Message)
	}
	return t.Message
}

// FromError wraps a Go error as an exception value.
func FromError(err error) *Value {
	if err == nil {
		return NewNull()
	}
	return NewException(&Throw{Message: err.Error()})
}

// IsError reports whether the value carries an exception or throwable.
func (v *Value) IsError() bool {
	k := v.Kind()
	return k == Exception || k == Throwable
}

// Unwrap returns the exception payload regardless of whether v is an
// exception or a throwable wrapping one, nil otherwise.
func (v *Value) Unwrap() *Throw {
	switch v.Kind() {
	case Exception:
		return v.ExceptionValue()
	case Throwable:
		inner := v.ThrowableValue()
		if inner.Kind() == Exception {
			return inner.ExceptionValue()
		}
	}
	return nil
}
