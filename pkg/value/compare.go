package value

// Equal compares two values by kind and content, recursing into composite
// kinds. Descriptor-wrapping kinds compare by identity of the wrapped
// descriptor; ptr values compare by payload identity.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Buffer:
		a, b := v.data.([]byte), other.data.([]byte)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case Array, Map:
		a, b := v.data.([]*Value), other.data.([]*Value)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case Null:
		return true
	case Throwable:
		a, _ := v.data.(*Value)
		b, _ := other.data.(*Value)
		return a.Equal(b)
	case Exception:
		a, _ := v.data.(*Throw)
		b, _ := other.data.(*Throw)
		if a == nil || b == nil {
			return a == b
		}
		return a.Message == b.Message && a.Label == b.Label && a.Code == b.Code
	default:
		return v.data == other.data
	}
}
