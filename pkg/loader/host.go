package loader

import (
	"fmt"

	"github.com/omnicall/omnicall/pkg/reflection"
	"github.com/omnicall/omnicall/pkg/value"
)

// HostTag names the synthetic adapter holding natively registered
// callbacks. It is always initialized first and destroyed last.
const HostTag = "__omnicall_host__"

// HostCallback is the shape of a natively registered function: it receives
// the marshalled argument array and the data pointer supplied at
// registration, and returns a value the dispatcher hands back untouched.
type HostCallback func(args []*value.Value, data any) (*value.Value, error)

// hostLoader implements Loader for the host. It loads nothing; its only
// job is exposing registered callbacks as first-class functions and
// pre-defining a type per builtin kind.
type hostLoader struct{}

func (hostLoader) Initialize(impl *Impl, _ map[string]any) error {
	for _, k := range value.Kinds() {
		t, err := reflection.NewType(k, k.String(), nil, nil)
		if err != nil {
			return err
		}
		if err := impl.DefineType(t); err != nil {
			return err
		}
	}
	return nil
}

func (hostLoader) ExecutionPath(string) error { return nil }

func (hostLoader) LoadFromFile([]string) (any, error) {
	return nil, fmt.Errorf("host adapter does not load files")
}

func (hostLoader) LoadFromMemory(string, []byte) (any, error) {
	return nil, fmt.Errorf("host adapter does not load buffers")
}

func (hostLoader) LoadFromPackage(string) (any, error) {
	return nil, fmt.Errorf("host adapter does not load packages")
}

func (hostLoader) Clear(any) error { return nil }

func (hostLoader) Discover(any, *reflection.Context) error { return nil }

func (hostLoader) Destroy() error { return nil }

// hostFunctionInterface invokes the stored callback directly: the Go
// equivalent of the C host's function-pointer cast, with the closure slot
// carrying the user data.
type hostFunctionInterface struct {
	callback HostCallback
}

func (h *hostFunctionInterface) Create(*reflection.Function) error { return nil }

func (h *hostFunctionInterface) Invoke(fn *reflection.Function, args []*value.Value) (*value.Value, error) {
	return h.callback(args, fn.Closure())
}

func (h *hostFunctionInterface) Await(fn *reflection.Function, args []*value.Value, resolve reflection.ResolveCallback, reject reflection.RejectCallback, ctx any) (*reflection.Future, error) {
	// Host callbacks run synchronously; the future settles immediately.
	f := reflection.NewPendingFuture()
	out, err := h.callback(args, fn.Closure())
	if err != nil {
		_ = f.Reject(value.FromError(err))
	} else if out != nil && out.IsError() {
		_ = f.Reject(out)
	} else {
		_ = f.Resolve(out)
	}
	return f.Await(resolve, reject, ctx), nil
}

func (h *hostFunctionInterface) Destroy(*reflection.Function) {}

// initializeHost creates and initializes the host adapter record.
func (m *Manager) initializeHost() (*Impl, error) {
	im := newImpl(HostTag, hostLoader{})
	if err := im.loader.Initialize(im, nil); err != nil {
		return nil, fmt.Errorf("host adapter initialization: %w", err)
	}
	im.initialized = true
	m.impls[HostTag] = im
	m.initOrder = append(m.initOrder, HostTag)
	return im, nil
}

// RegisterFunction exposes a native callback as a first-class function in
// the host scope. Parameter and return types resolve against the host's
// builtin kinds; a registered name must be unique across every adapter.
func (m *Manager) RegisterFunction(name string, callback HostCallback, ret value.Kind, params []value.Kind, data any) error {
	if name == "" {
		return fmt.Errorf("cannot register a callback without a name")
	}
	if callback == nil {
		return fmt.Errorf("cannot register nil callback %q", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sig := reflection.NewSignature(len(params))
	for i, k := range params {
		sig.Set(i, fmt.Sprintf("arg%d", i), m.host.Type(k.String()))
	}
	sig.SetReturn(m.host.Type(ret.String()))

	fn, err := reflection.NewFunction(name, sig, nil, &hostFunctionInterface{callback: callback})
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	fn.Bind(data)

	for tag, other := range m.impls {
		if other.ctx.Scope().Get(name) != nil {
			fn.Release()
			return fmt.Errorf("symbol %q already defined by adapter %q: %w", name, tag, reflection.ErrAlreadyDefined)
		}
	}

	wrapped := value.NewFunction(fn)
	fn.Release() // the wrapping value holds the ownership now
	if err := m.host.ctx.Scope().Define(name, wrapped); err != nil {
		wrapped.Destroy()
		return err
	}
	return nil
}
