package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Add(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	a := NewManifest(WithSignalTypes(fooSignal{}), WithContentTypes(photoContent{}))
	b := NewManifest(WithSignalTypes(barSignal{}), WithContentTypes(videoContent{}), WithAPIs(fileAPI{}))

	require.NoError(t, c.Add("tx_a", a))
	require.NoError(t, c.Add("tx_b", b))

	assert.Equal(t, []string{"tx_a", "tx_b"}, c.Extensions())
	assert.Equal(t, []SignalType{fooSignal{}, barSignal{}}, c.SignalTypes())
	assert.Equal(t, []ContentType{photoContent{}, videoContent{}}, c.ContentTypes())
	assert.Equal(t, []ExchangeAPI{fileAPI{}}, c.APIs())

	got, ok := c.Get("tx_b")
	require.True(t, ok)
	assert.Same(t, b, got)

	owner, ok := c.Owner("api", "local_file")
	require.True(t, ok)
	assert.Equal(t, "tx_b", owner)
}

func TestCatalog_Conflicts(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	require.NoError(t, c.Add("tx_a", NewManifest(WithSignalTypes(fooSignal{}))))

	err := c.Add("tx_b", NewManifest(WithSignalTypes(barSignal{}, fooSignal{})))
	require.Error(t, err)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "signal type", conflict.Kind)
	assert.Equal(t, "foo", conflict.Name)
	assert.Equal(t, "tx_a", conflict.Existing)
	assert.Equal(t, "tx_b", conflict.Incoming)

	// Nothing from the rejected extension is recorded.
	assert.Equal(t, []string{"tx_a"}, c.Extensions())
	assert.Equal(t, []SignalType{fooSignal{}}, c.SignalTypes())
	_, ok := c.Owner("signal type", "bar")
	assert.False(t, ok)
}

func TestCatalog_SameNameAcrossKindsIsAllowed(t *testing.T) {
	t.Parallel()

	type photoSignal struct{ photoContent }

	c := NewCatalog()
	err := c.Add("tx_a", NewManifest(
		WithSignalTypes(photoSignal{}),
		WithContentTypes(photoContent{}),
	))
	assert.NoError(t, err)
}

func TestCatalog_DuplicateWithinOneExtension(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	err := c.Add("tx_a", NewManifest(WithAPIs(fileAPI{}, fileAPI{})))
	assert.True(t, IsConflict(err))
	assert.Empty(t, c.Extensions())
}

func TestCatalog_DuplicateID(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	require.NoError(t, c.Add("tx_a", &Manifest{}))
	assert.True(t, IsModuleExists(c.Add("tx_a", &Manifest{})))
	assert.ErrorIs(t, c.Add("tx_b", nil), ErrNilModule)
}

func TestCatalog_NilDescriptor(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	err := c.Add("tx_a", NewManifest(WithSignalTypes(fooSignal{}), WithAPIs(nil)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNilDescriptor)
	assert.Contains(t, err.Error(), "api 0 is nil")
	assert.Empty(t, c.Extensions())
	assert.Empty(t, c.SignalTypes())

	_, owned := c.Owner("signal type", "foo")
	assert.False(t, owned)
}
