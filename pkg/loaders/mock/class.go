package mock

import (
	"fmt"

	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// The mock adapter discovers one class alongside its functions: an
// accumulator with two long attributes, a sum method and a static
// instance counter. It exists so the object surface has an in-process
// adapter to run against.

type classState struct {
	instances int64
}

type objectState struct {
	fields map[string]*value.Value
}

func (l *Loader) discoverClass(ctx *reflection.Context) error {
	longType := l.typeOf(value.Long)

	state := &classState{}
	cls := reflection.NewClass("Accumulator", reflection.VisibilityPublic, state, &classInterface{})

	if err := cls.RegisterAttribute(reflection.NewAttribute("left", longType, reflection.VisibilityPublic, nil)); err != nil {
		return err
	}
	if err := cls.RegisterAttribute(reflection.NewAttribute("right", longType, reflection.VisibilityPublic, nil)); err != nil {
		return err
	}
	if err := cls.RegisterStaticAttribute(reflection.NewAttribute("instances", longType, reflection.VisibilityPublic, nil)); err != nil {
		return err
	}

	ctor := reflection.NewConstructor(2, reflection.VisibilityPublic, nil)
	ctor.Set(0, "left", longType)
	ctor.Set(1, "right", longType)
	if err := cls.RegisterConstructor(ctor); err != nil {
		return err
	}

	sig := reflection.NewSignature(0)
	sig.SetReturn(longType)
	if err := cls.RegisterMethod(reflection.NewMethod(cls, "sum", sig, reflection.VisibilityPublic, false, nil)); err != nil {
		return err
	}
	cls.Seal()

	wrapped := value.NewClass(cls)
	cls.Release()
	if err := ctx.Scope().Define("Accumulator", wrapped); err != nil {
		wrapped.Destroy()
		return err
	}
	return nil
}

type classInterface struct{}

func (classInterface) StaticGet(cls *reflection.Class, attr *reflection.Attribute) (*value.Value, error) {
	state, ok := cls.Impl().(*classState)
	if !ok || attr.Name() != "instances" {
		return nil, reflection.ErrNotFound
	}
	return value.NewLong(state.instances), nil
}

func (classInterface) StaticSet(cls *reflection.Class, attr *reflection.Attribute, v *value.Value) error {
	state, ok := cls.Impl().(*classState)
	if !ok || attr.Name() != "instances" {
		return reflection.ErrNotFound
	}
	state.instances = v.LongValue()
	return nil
}

func (classInterface) Constructor(cls *reflection.Class, name string, ctor *reflection.Constructor, args []*value.Value) (*reflection.Object, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("accumulator takes two longs, got %d arguments", len(args))
	}
	if state, ok := cls.Impl().(*classState); ok {
		state.instances++
	}
	fields := map[string]*value.Value{
		"left":  args[0].Copy(),
		"right": args[1].Copy(),
	}
	return reflection.NewObject(name, cls, &objectState{fields: fields}, &objectInterface{}), nil
}

func (classInterface) Destroy(*reflection.Class) {}

type objectInterface struct{}

func (objectInterface) Get(obj *reflection.Object, attr *reflection.Attribute) (*value.Value, error) {
	state := obj.Impl().(*objectState)
	v, ok := state.fields[attr.Name()]
	if !ok {
		return nil, reflection.ErrNotFound
	}
	return v.Copy(), nil
}

func (objectInterface) Set(obj *reflection.Object, attr *reflection.Attribute, v *value.Value) error {
	state := obj.Impl().(*objectState)
	if old, ok := state.fields[attr.Name()]; ok {
		old.Destroy()
	}
	state.fields[attr.Name()] = v.Copy()
	return nil
}

func (objectInterface) MethodInvoke(obj *reflection.Object, m *reflection.Method, args []*value.Value) (*value.Value, error) {
	if m.Name() != "sum" {
		return nil, reflection.ErrNotFound
	}
	state := obj.Impl().(*objectState)
	return value.NewLong(state.fields["left"].LongValue() + state.fields["right"].LongValue()), nil
}

func (oi objectInterface) MethodAwait(obj *reflection.Object, m *reflection.Method, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	f := reflection.NewPendingFuture()
	out, err := oi.MethodInvoke(obj, m, args)
	if err != nil {
		_ = f.Reject(value.FromError(err))
	} else {
		_ = f.Resolve(out)
	}
	return f.Await(resolve, reject, ctx), nil
}

func (objectInterface) Destructor(obj *reflection.Object) {
	state, ok := obj.Impl().(*objectState)
	if !ok {
		return
	}
	for _, v := range state.fields {
		v.Destroy()
	}
	state.fields = nil
}

func (objectInterface) Destroy(*reflection.Object) {}
