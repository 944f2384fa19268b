package extension

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/txext/internal/ports"
	"github.com/stretchr/testify/require"
)

type fooSignal struct{}

func (fooSignal) Name() string { return "foo" }

type barSignal struct{}

func (barSignal) Name() string { return "bar" }

type photoContent struct{}

func (photoContent) Name() string { return "photo" }

type videoContent struct{}

func (videoContent) Name() string { return "video" }

type fileAPI struct{}

func (fileAPI) Name() string { return "local_file" }

var errModelMissing = errors.New("model weights not found")

// recordingManifest records hook calls and fails or panics on request.
type recordingManifest struct {
	Manifest
	calls         []string
	entrypointErr error
	bootstrapErr  error
	verifyErr     error
	panicOn       string
	sawLogger     bool
}

func (m *recordingManifest) hook(ctx context.Context, name string, err error) error {
	m.calls = append(m.calls, name)
	m.sawLogger = m.sawLogger || ports.LoggerFromContext(ctx) != nil
	if m.panicOn == name {
		panic(name + " exploded")
	}
	return err
}

func (m *recordingManifest) Entrypoint(ctx context.Context) error {
	return m.hook(ctx, "entrypoint", m.entrypointErr)
}

func (m *recordingManifest) Bootstrap(ctx context.Context) error {
	return m.hook(ctx, "bootstrap", m.bootstrapErr)
}

func (m *recordingManifest) Verify(ctx context.Context) error {
	return m.hook(ctx, "verify", m.verifyErr)
}

func newRecording(opts ...ManifestOption) *recordingManifest {
	return &recordingManifest{Manifest: *NewManifest(opts...)}
}

// registryWith returns a fresh registry holding one module per entry.
func registryWith(t *testing.T, modules map[string]Module) *Registry {
	t.Helper()
	r := NewRegistry()
	for id, m := range modules {
		require.NoError(t, r.Register(id, m))
	}
	return r
}
