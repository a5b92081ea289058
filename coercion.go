package omnicall

import (
	"fmt"
	"math"

	"github.com/omnicall/omnicall/internal/logger"
	prommetrics "github.com/omnicall/omnicall/pkg/metrics/prometheus"
	"github.com/omnicall/omnicall/pkg/value"
)

// Coercion rules for arguments whose kind differs from the declared
// parameter kind:
//
//   - Adjacent numeric kinds (bool..double) convert with the host
//     language's rules. Narrowing that loses data proceeds with a warning
//     log record; double->float narrowing uses Go's default conversion
//     (IEEE 754 round to nearest).
//   - string accepts any kind via stringification.
//   - ptr passes through unchanged.
//   - array and map never convert implicitly.
//   - Every other combination is an argument-type failure.

// coerce converts v to the wanted kind. The boolean reports whether a new
// value was created (the caller destroys it after the dispatch); an error
// means the combination is not coercible.
func coerce(v *value.Value, want value.Kind) (*value.Value, bool, error) {
	have := v.Kind()
	if have == want || want == value.Invalid || want == value.Ptr || want == value.Null {
		return v, false, nil
	}

	if want == value.String {
		prommetrics.Dispatch().RecordCoercion(have.String(), want.String())
		return value.NewString(v.String()), true, nil
	}

	if have.IsNumeric() && want.IsNumeric() {
		out, lossy := convertNumeric(v, want)
		if lossy {
			logger.Warn("narrowing conversion loses data",
				logger.KeyFromKind, have.String(),
				logger.KeyToKind, want.String())
		}
		prommetrics.Dispatch().RecordCoercion(have.String(), want.String())
		return out, true, nil
	}

	return nil, false, fmt.Errorf("cannot coerce %s to %s", have, want)
}

// numericParts extracts the integral and floating views of a numeric
// value.
func numericParts(v *value.Value) (i int64, f float64, isFloat bool) {
	switch v.Kind() {
	case value.Bool:
		if v.BoolValue() {
			return 1, 1, false
		}
		return 0, 0, false
	case value.Char:
		c := int64(v.CharValue())
		return c, float64(c), false
	case value.Short:
		s := int64(v.ShortValue())
		return s, float64(s), false
	case value.Int:
		n := int64(v.IntValue())
		return n, float64(n), false
	case value.Long:
		n := v.LongValue()
		return n, float64(n), false
	case value.Float:
		f := float64(v.FloatValue())
		return int64(f), f, true
	case value.Double:
		d := v.DoubleValue()
		return int64(d), d, true
	default:
		return 0, 0, false
	}
}

// convertNumeric builds a value of the wanted kind from v's numeric
// payload, reporting whether the conversion lost information.
func convertNumeric(v *value.Value, want value.Kind) (*value.Value, bool) {
	i, f, isFloat := numericParts(v)

	switch want {
	case value.Bool:
		truth := i != 0 || (isFloat && f != 0)
		lossy := (isFloat && f != 0 && f != 1) || (!isFloat && i != 0 && i != 1)
		return value.NewBool(truth), lossy
	case value.Char:
		c := byte(i)
		lossy := int64(c) != i || (isFloat && f != math.Trunc(f))
		return value.NewChar(c), lossy
	case value.Short:
		s := int16(i)
		lossy := int64(s) != i || (isFloat && f != math.Trunc(f))
		return value.NewShort(s), lossy
	case value.Int:
		n := int32(i)
		lossy := int64(n) != i || (isFloat && f != math.Trunc(f))
		return value.NewInt(n), lossy
	case value.Long:
		lossy := isFloat && f != math.Trunc(f)
		return value.NewLong(i), lossy
	case value.Float:
		if isFloat {
			out := float32(f)
			return value.NewFloat(out), float64(out) != f
		}
		out := float32(i)
		return value.NewFloat(out), int64(out) != i
	case value.Double:
		if isFloat {
			return value.NewDouble(f), false
		}
		d := float64(i)
		return value.NewDouble(d), int64(d) != i
	default:
		return value.NewNull(), true
	}
}
