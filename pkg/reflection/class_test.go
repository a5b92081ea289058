package reflection

import (
	"fmt"
	"testing"

	"github.com/omnicall/omnicall/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClassIface backs class/object tests with an in-memory attribute map.
type stubClassIface struct {
	statics map[string]*value.Value
}

func (s *stubClassIface) StaticGet(_ *Class, attr *Attribute) (*value.Value, error) {
	v, ok := s.statics[attr.Name()]
	if !ok {
		return nil, ErrNotFound
	}
	return v.Copy(), nil
}

func (s *stubClassIface) StaticSet(_ *Class, attr *Attribute, v *value.Value) error {
	s.statics[attr.Name()] = v.Copy()
	return nil
}

func (s *stubClassIface) Constructor(cls *Class, name string, _ *Constructor, args []*value.Value) (*Object, error) {
	fields := make(map[string]*value.Value)
	for i, a := range args {
		fields[fmt.Sprintf("arg%d", i)] = a.Copy()
	}
	return NewObject(name, cls, fields, &stubObjectIface{}), nil
}

func (s *stubClassIface) Destroy(_ *Class) {}

type stubObjectIface struct {
	destructed int
}

func (s *stubObjectIface) Get(obj *Object, attr *Attribute) (*value.Value, error) {
	fields := obj.Impl().(map[string]*value.Value)
	v, ok := fields[attr.Name()]
	if !ok {
		return nil, ErrNotFound
	}
	return v.Copy(), nil
}

func (s *stubObjectIface) Set(obj *Object, attr *Attribute, v *value.Value) error {
	fields := obj.Impl().(map[string]*value.Value)
	fields[attr.Name()] = v.Copy()
	return nil
}

func (s *stubObjectIface) MethodInvoke(obj *Object, m *Method, args []*value.Value) (*value.Value, error) {
	var sum int64
	for _, a := range args {
		sum += a.LongValue()
	}
	return value.NewLong(sum), nil
}

func (s *stubObjectIface) MethodAwait(obj *Object, m *Method, args []*value.Value, resolve ResolveCallback, reject RejectCallback, ctx any) (*Future, error) {
	f := NewPendingFuture()
	out, err := s.MethodInvoke(obj, m, args)
	if err != nil {
		_ = f.Reject(value.FromError(err))
	} else {
		_ = f.Resolve(out)
	}
	return f.Await(resolve, reject, ctx), nil
}

func (s *stubObjectIface) Destructor(_ *Object) { s.destructed++ }

func (s *stubObjectIface) Destroy(_ *Object) {}

func buildTestClass(t *testing.T) *Class {
	t.Helper()

	longType, err := NewType(value.Long, "long", nil, nil)
	require.NoError(t, err)

	cls := NewClass("Point", VisibilityPublic, nil, &stubClassIface{statics: map[string]*value.Value{}})
	require.NoError(t, cls.RegisterAttribute(NewAttribute("arg0", longType, VisibilityPublic, nil)))
	require.NoError(t, cls.RegisterStaticAttribute(NewAttribute("instances", longType, VisibilityPublic, nil)))

	ctor := NewConstructor(2, VisibilityPublic, nil)
	ctor.Set(0, "x", longType)
	ctor.Set(1, "y", longType)
	require.NoError(t, cls.RegisterConstructor(ctor))

	sig := NewSignature(2)
	sig.Set(0, "a", longType)
	sig.Set(1, "b", longType)
	sig.SetReturn(longType)
	require.NoError(t, cls.RegisterMethod(NewMethod(cls, "sum", sig, VisibilityPublic, false, nil)))

	cls.Seal()
	return cls
}

func TestConstructorCompare(t *testing.T) {
	t.Parallel()

	longType, err := NewType(value.Long, "long", nil, nil)
	require.NoError(t, err)

	ctor := NewConstructor(2, VisibilityPublic, nil)
	ctor.Set(0, "x", longType)
	ctor.Set(1, "y", longType)

	assert.True(t, ctor.Compare([]value.Kind{value.Long, value.Long}))
	assert.False(t, ctor.Compare([]value.Kind{value.Long}))
	assert.False(t, ctor.Compare([]value.Kind{value.Long, value.Double}))
}

func TestClassSealRejectsRegistration(t *testing.T) {
	t.Parallel()

	cls := buildTestClass(t)
	assert.ErrorIs(t, cls.RegisterMethod(NewMethod(cls, "late", NewSignature(0), VisibilityPublic, false, nil)), ErrSealed)
	assert.ErrorIs(t, cls.RegisterConstructor(NewConstructor(0, VisibilityPublic, nil)), ErrSealed)
}

func TestClassNewAndObjectLifecycle(t *testing.T) {
	t.Parallel()

	cls := buildTestClass(t)
	obj, err := cls.New("p", []*value.Value{value.NewLong(3), value.NewLong(4)})
	require.NoError(t, err)
	require.NotNil(t, obj)

	got, err := obj.Get("arg0")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.LongValue())

	out, err := obj.CallMethod("sum", []*value.Value{value.NewLong(3), value.NewLong(4)})
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.LongValue())

	_, err = obj.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassStaticAccess(t *testing.T) {
	t.Parallel()

	cls := buildTestClass(t)
	require.NoError(t, cls.StaticSet("instances", value.NewLong(2)))

	got, err := cls.StaticGet("instances")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LongValue())
}

func TestClassNoMatchingConstructor(t *testing.T) {
	t.Parallel()

	cls := buildTestClass(t)
	_, err := cls.New("p", []*value.Value{value.NewString("not a long")})
	assert.ErrorIs(t, err, ErrNoMatchingConstructor)
}
