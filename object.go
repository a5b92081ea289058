package omnicall

import (
	"fmt"

	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// Object-surface helpers: they accept the object-wrapping value the class
// constructor handed out, so callers never touch descriptors directly.

func objectOf(v *value.Value) (*reflection.Object, error) {
	if v.Kind() != value.Object {
		return nil, fmt.Errorf("value of kind %s is not an object", v.Kind())
	}
	obj, _ := v.ObjectValue().(*reflection.Object)
	if obj == nil {
		return nil, fmt.Errorf("object value carries no descriptor")
	}
	return obj, nil
}

// ObjectGet reads an attribute of an object value.
func ObjectGet(v *value.Value, name string) (*value.Value, error) {
	obj, err := objectOf(v)
	if err != nil {
		return nil, err
	}
	return obj.Get(name)
}

// ObjectSet writes an attribute of an object value.
func ObjectSet(v *value.Value, name string, attr *value.Value) error {
	obj, err := objectOf(v)
	if err != nil {
		return err
	}
	return obj.Set(name, attr)
}

// CallVObject invokes a method on an object value with positional
// arguments.
func CallVObject(v *value.Value, method string, args ...*value.Value) (*value.Value, error) {
	obj, err := objectOf(v)
	if err != nil {
		return nil, err
	}
	return obj.CallMethod(method, args)
}

// AwaitObject dispatches an async method on an object value.
func AwaitObject(v *value.Value, method string, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	obj, err := objectOf(v)
	if err != nil {
		return nil, err
	}
	return obj.AwaitMethod(method, args, resolve, reject, ctx)
}

// ClassStaticGet reads a static attribute of the named class.
func (h *Host) ClassStaticGet(className, attr string) (*value.Value, error) {
	cls := h.Class(className)
	if cls == nil {
		return nil, fmt.Errorf("class %q: %w", className, reflection.ErrNotFound)
	}
	return cls.StaticGet(attr)
}

// ClassStaticSet writes a static attribute of the named class.
func (h *Host) ClassStaticSet(className, attr string, v *value.Value) error {
	cls := h.Class(className)
	if cls == nil {
		return fmt.Errorf("class %q: %w", className, reflection.ErrNotFound)
	}
	return cls.StaticSet(attr, v)
}
