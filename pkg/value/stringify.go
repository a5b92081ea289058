package value

import (
	"fmt"
	"reflect"
	"strconv"
)

// Named is optionally implemented by descriptor payloads that carry a name;
// stringification uses it for function, class and object values.
type Named interface {
	Name() string
}

// String renders the value recursively: arrays bracket-enclose
// comma-separated children, maps brace-enclose key:value pairs, buffers
// render as two hex digits per byte, pointers as implementation-defined hex.
func (v *Value) String() string {
	return string(v.appendTo(nil))
}

// Stringify writes the textual representation into dst and returns the
// number of bytes required. When dst is nil nothing is written, so callers
// can size a buffer with a first pass.
func (v *Value) Stringify(dst []byte) int {
	rendered := v.appendTo(nil)
	if dst != nil {
		copy(dst, rendered)
	}
	return len(rendered)
}

func (v *Value) appendTo(buf []byte) []byte {
	if v == nil {
		return append(buf, "(null)"...)
	}
	switch v.kind {
	case Bool:
		return strconv.AppendBool(buf, v.data.(bool))
	case Char:
		return append(buf, v.data.(byte))
	case Short:
		return strconv.AppendInt(buf, int64(v.data.(int16)), 10)
	case Int:
		return strconv.AppendInt(buf, int64(v.data.(int32)), 10)
	case Long:
		return strconv.AppendInt(buf, v.data.(int64), 10)
	case Float:
		return strconv.AppendFloat(buf, float64(v.data.(float32)), 'g', -1, 32)
	case Double:
		return strconv.AppendFloat(buf, v.data.(float64), 'g', -1, 64)
	case String:
		return append(buf, v.data.(string)...)
	case Buffer:
		for _, b := range v.data.([]byte) {
			buf = fmt.Appendf(buf, "%02x", b)
		}
		return buf
	case Array:
		buf = append(buf, '[')
		for i, child := range v.data.([]*Value) {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = child.appendTo(buf)
		}
		return append(buf, ']')
	case Map:
		buf = append(buf, '{')
		for i, pair := range v.data.([]*Value) {
			if i > 0 {
				buf = append(buf, ',')
			}
			kv, _ := pair.data.([]*Value)
			if len(kv) == 2 {
				buf = kv[0].appendTo(buf)
				buf = append(buf, ':')
				buf = kv[1].appendTo(buf)
			}
		}
		return append(buf, '}')
	case Ptr:
		if target, ok := v.data.(*Value); ok {
			return fmt.Appendf(buf, "&%s", target.String())
		}
		return appendPointer(buf, v.data)
	case Future:
		return append(buf, "[future]"...)
	case Function:
		if named, ok := v.data.(Named); ok {
			return fmt.Appendf(buf, "[function %s]", named.Name())
		}
		return append(buf, "[function]"...)
	case Null:
		return append(buf, "(null)"...)
	case Class:
		if named, ok := v.data.(Named); ok {
			return fmt.Appendf(buf, "[class %s]", named.Name())
		}
		return append(buf, "[class]"...)
	case Object:
		if named, ok := v.data.(Named); ok {
			return fmt.Appendf(buf, "[object %s]", named.Name())
		}
		return append(buf, "[object]"...)
	case Exception:
		if ex, ok := v.data.(*Throw); ok && ex != nil {
			return fmt.Appendf(buf, "[exception %s]", ex.Error())
		}
		return append(buf, "[exception]"...)
	case Throwable:
		if inner, ok := v.data.(*Value); ok {
			return inner.appendTo(buf)
		}
		return append(buf, "[throwable]"...)
	default:
		return append(buf, "(invalid)"...)
	}
}

func appendPointer(buf []byte, p any) []byte {
	// The rendering is implementation-defined hex; non-pointer payloads fall
	// back to their default formatting.
	switch rv := reflect.ValueOf(p); rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan, reflect.Map, reflect.Func, reflect.Slice:
		return fmt.Appendf(buf, "0x%x", rv.Pointer())
	default:
		return fmt.Appendf(buf, "%v", p)
	}
}
