package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/txext/internal/config"
	"github.com/felixgeelhaar/txext/internal/domain/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pdqSignal struct{}

func (pdqSignal) Name() string { return "pdq" }

type md5Signal struct{}

func (md5Signal) Name() string { return "video_md5" }

type photoContent struct{}

func (photoContent) Name() string { return "photo" }

type countingManifest struct {
	extension.Manifest
	entrypoints int
	bootstraps  int
	err         error
}

func (m *countingManifest) Entrypoint(context.Context) error {
	m.entrypoints++
	return m.err
}

func (m *countingManifest) Bootstrap(context.Context) error {
	m.bootstraps++
	return m.err
}

type fixture struct {
	path     string
	registry *extension.Registry
	pdq      *countingManifest
	clash    *countingManifest
	broken   *countingManifest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		path:     filepath.Join(t.TempDir(), "config.yaml"),
		registry: extension.NewRegistry(),
		pdq: &countingManifest{Manifest: *extension.NewManifest(
			extension.WithSignalTypes(pdqSignal{}),
			extension.WithContentTypes(photoContent{}),
		)},
		clash: &countingManifest{Manifest: *extension.NewManifest(
			extension.WithSignalTypes(md5Signal{}, pdqSignal{}),
		)},
		broken: &countingManifest{err: errors.New("model weights not found")},
	}
	require.NoError(t, f.registry.Register("tx_extension_pdq", extension.Symbols{extension.ManifestSymbol: f.pdq}))
	require.NoError(t, f.registry.Register("tx_extension_clash", extension.Symbols{extension.ManifestSymbol: f.clash}))
	require.NoError(t, f.registry.Register("tx_extension_broken", extension.Symbols{extension.ManifestSymbol: f.broken}))
	require.NoError(t, f.registry.Register("tx_extension_bare", extension.Symbols{extension.ManifestSymbol: &extension.Manifest{}}))
	return f
}

func (f *fixture) service(opts ...ServiceOption) *ExtensionService {
	return NewExtensionService(f.path, append([]ServiceOption{WithResolver(f.registry)}, opts...)...)
}

func TestExtensionService_AddPersists(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	ext, err := svc.Add(ctx, "tx_extension_pdq")
	require.NoError(t, err)
	assert.Same(t, f.pdq, ext)

	_, err = svc.Add(ctx, "tx_extension_bare")
	require.NoError(t, err)

	ids, err := svc.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"tx_extension_pdq", "tx_extension_bare"}, ids)

	cfg, err := config.Load(f.path)
	require.NoError(t, err)
	assert.Equal(t, ids, cfg.Extensions)
}

func TestExtensionService_AddRejectsDuplicate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.service()

	_, err := svc.Add(context.Background(), "tx_extension_pdq")
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), "tx_extension_pdq")
	assert.ErrorIs(t, err, config.ErrExtensionConfigured)
}

func TestExtensionService_AddRejectsConflicts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Add(ctx, "tx_extension_pdq")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "tx_extension_clash")
	require.Error(t, err)
	assert.True(t, extension.IsConflict(err))

	ids, err := svc.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"tx_extension_pdq"}, ids)
}

func TestExtensionService_AddLoadFailures(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Add(ctx, "tx_extension_missing")
	assert.True(t, extension.IsModuleNotFound(err))

	_, err = svc.Add(ctx, "tx_extension_broken")
	assert.True(t, extension.IsManifestInitFailed(err))

	ids, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExtensionService_TrimsModuleID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	ext, err := svc.Add(ctx, " tx_extension_pdq ")
	require.NoError(t, err)
	assert.Same(t, f.pdq, ext)

	_, err = svc.Add(ctx, "tx_extension_pdq")
	assert.ErrorIs(t, err, config.ErrExtensionConfigured)
	assert.Equal(t, 1, f.pdq.entrypoints, "duplicate is rejected before loading")

	_, err = svc.Info(ctx, "\ttx_extension_pdq")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "tx_extension_pdq "))
	ids, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExtensionService_NilDescriptorIsLoadError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	require.NoError(t, f.registry.Register("tx_extension_hollow", extension.Symbols{
		extension.ManifestSymbol: extension.NewManifest(extension.WithAPIs(nil)),
	}))
	svc := f.service()

	_, err := svc.Add(context.Background(), "tx_extension_hollow")
	require.Error(t, err)
	assert.True(t, extension.IsManifestTypeMismatch(err))
	assert.ErrorIs(t, err, extension.ErrNilDescriptor)

	ids, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExtensionService_Remove(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Add(ctx, "tx_extension_pdq")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "tx_extension_pdq"))
	ids, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, svc.Remove(ctx, "tx_extension_pdq"), config.ErrExtensionNotConfigured)
}

func TestExtensionService_InfoRunsHooksEachCall(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.service()

	for i := 0; i < 2; i++ {
		ext, err := svc.Info(context.Background(), "tx_extension_pdq")
		require.NoError(t, err)
		assert.Same(t, f.pdq, ext)
	}
	assert.Equal(t, 2, f.pdq.entrypoints)

	ids, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, ids, "info does not change the configuration")
}

func TestExtensionService_HookModeFromConfigAndOverride(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	cfg := config.Default()
	cfg.HookMode = extension.HookBootstrapVerify.String()
	require.NoError(t, cfg.Save(f.path))

	_, err := f.service().Info(context.Background(), "tx_extension_pdq")
	require.NoError(t, err)
	assert.Equal(t, 1, f.pdq.bootstraps)
	assert.Equal(t, 0, f.pdq.entrypoints)

	_, err = f.service(WithHookMode(extension.HookEntrypoint)).Info(context.Background(), "tx_extension_pdq")
	require.NoError(t, err)
	assert.Equal(t, 1, f.pdq.entrypoints)
}

func TestExtensionService_LoadConfigured(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Add(ctx, "tx_extension_pdq")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "tx_extension_bare")
	require.NoError(t, err)

	catalog, err := svc.LoadConfigured(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tx_extension_pdq", "tx_extension_bare"}, catalog.Extensions())
	assert.Equal(t, []extension.SignalType{pdqSignal{}}, catalog.SignalTypes())
	assert.Equal(t, []extension.ContentType{photoContent{}}, catalog.ContentTypes())
}

func TestResolverFor(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	assert.Same(t, extension.DefaultRegistry(), ResolverFor(cfg))

	cfg.PluginDir = t.TempDir()
	chain, ok := ResolverFor(cfg).(extension.ChainResolver)
	require.True(t, ok)
	assert.Len(t, chain, 2)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info(context.Background(), "hidden")
	logger.Warn(context.Background(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = NewLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
}
