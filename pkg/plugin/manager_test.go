package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIface struct {
	id string
}

func TestManagerCreateFromStaticRegistry(t *testing.T) {
	Register("testmgr", "alpha", func() any { return &fakeIface{id: "alpha"} })
	defer Unregister("testmgr", "alpha")

	m, err := NewManager("testmgr", "", "/nonexistent", nil)
	require.NoError(t, err)
	defer m.Destroy()

	p, err := m.Create("alpha", "impl-blob", nil)
	require.NoError(t, err)
	assert.Equal(t, "alpha", p.Name())
	assert.Equal(t, "impl-blob", p.Impl())
	assert.False(t, p.Dynamic())

	iface, ok := p.Interface().(*fakeIface)
	require.True(t, ok)
	assert.Equal(t, "alpha", iface.id)

	assert.Same(t, p, m.Get("alpha"))
}

func TestManagerDuplicateCreateFails(t *testing.T) {
	Register("testmgr", "dup", func() any { return &fakeIface{} })
	defer Unregister("testmgr", "dup")

	m, err := NewManager("testmgr", "", "", nil)
	require.NoError(t, err)
	defer m.Destroy()

	_, err = m.Create("dup", nil, nil)
	require.NoError(t, err)
	_, err = m.Create("dup", nil, nil)
	assert.Error(t, err)
}

func TestManagerUnknownPluginFails(t *testing.T) {
	m, err := NewManager("testmgr", "", "/nonexistent", nil)
	require.NoError(t, err)
	defer m.Destroy()

	_, err = m.Create("ghost", nil, nil)
	assert.Error(t, err)
}

func TestManagerClearRunsDestructorOnce(t *testing.T) {
	Register("testmgr", "beta", func() any { return &fakeIface{} })
	defer Unregister("testmgr", "beta")

	m, err := NewManager("testmgr", "", "", nil)
	require.NoError(t, err)
	defer m.Destroy()

	var destroyed int
	p, err := m.Create("beta", nil, func(*Plugin) { destroyed++ })
	require.NoError(t, err)

	require.NoError(t, m.Clear(p))
	assert.Equal(t, 1, destroyed)
	assert.Nil(t, m.Get("beta"))

	assert.Error(t, m.Clear(p), "clearing an unregistered plugin fails")
	assert.Equal(t, 1, destroyed)
}

func TestManagerDestroyReverseOrder(t *testing.T) {
	for _, name := range []string{"one", "two", "three"} {
		name := name
		Register("testmgr", name, func() any { return &fakeIface{id: name} })
		defer Unregister("testmgr", name)
	}

	m, err := NewManager("testmgr", "", "", nil)
	require.NoError(t, err)

	var torn []string
	dtor := func(p *Plugin) { torn = append(torn, p.Name()) }
	for _, name := range []string{"one", "two", "three"} {
		_, err := m.Create(name, nil, dtor)
		require.NoError(t, err)
	}

	m.Destroy()
	assert.Equal(t, []string{"three", "two", "one"}, torn)
}

func TestManagerEnvOverridesLibraryPath(t *testing.T) {
	t.Setenv("TESTMGR_LIBRARY_PATH", "/opt/plugins")

	m, err := NewManager("testmgr", "TESTMGR_LIBRARY_PATH", "/default", nil)
	require.NoError(t, err)
	defer m.Destroy()

	assert.Equal(t, "/opt/plugins", m.LibraryPath())
}
