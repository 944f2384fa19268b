package extension

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// ManifestSymbol is the exported name every extension module must define.
const ManifestSymbol = "TXManifest"

// Manifest lists the signal types, content types and exchange APIs an
// extension provides. The zero value is a valid, empty manifest whose hooks
// do nothing.
//
// Extensions that need setup embed Manifest in their own type and override
// Entrypoint (or, under the deprecated two-phase contract, Bootstrap and
// Verify):
//
//	type clipManifest struct {
//		extension.Manifest
//	}
//
//	func (m *clipManifest) Entrypoint(ctx context.Context) error {
//		return loadModel(ctx)
//	}
//
//	var TXManifest = &clipManifest{
//		Manifest: *extension.NewManifest(extension.WithSignalTypes(ClipSignal{})),
//	}
type Manifest struct {
	signalTypes  []SignalType
	contentTypes []ContentType
	apis         []ExchangeAPI
}

// ManifestOption configures a Manifest at construction.
type ManifestOption func(*Manifest)

// WithSignalTypes appends signal type descriptors in declaration order.
func WithSignalTypes(types ...SignalType) ManifestOption {
	return func(m *Manifest) {
		m.signalTypes = append(m.signalTypes, types...)
	}
}

// WithContentTypes appends content type descriptors in declaration order.
func WithContentTypes(types ...ContentType) ManifestOption {
	return func(m *Manifest) {
		m.contentTypes = append(m.contentTypes, types...)
	}
}

// WithAPIs appends exchange API descriptors in declaration order.
func WithAPIs(apis ...ExchangeAPI) ManifestOption {
	return func(m *Manifest) {
		m.apis = append(m.apis, apis...)
	}
}

// NewManifest creates a manifest from the given options.
func NewManifest(opts ...ManifestOption) *Manifest {
	m := &Manifest{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SignalTypes returns a copy of the declared signal types.
func (m *Manifest) SignalTypes() []SignalType {
	if m == nil {
		return nil
	}
	return slices.Clone(m.signalTypes)
}

// ContentTypes returns a copy of the declared content types.
func (m *Manifest) ContentTypes() []ContentType {
	if m == nil {
		return nil
	}
	return slices.Clone(m.contentTypes)
}

// APIs returns a copy of the declared exchange APIs.
func (m *Manifest) APIs() []ExchangeAPI {
	if m == nil {
		return nil
	}
	return slices.Clone(m.apis)
}

// Entrypoint prepares the extension for use. By default, do nothing.
func (m *Manifest) Entrypoint(context.Context) error {
	return nil
}

// Bootstrap prepares the extension under the two-phase contract.
// By default, do nothing.
//
// Deprecated: override Entrypoint instead.
func (m *Manifest) Bootstrap(context.Context) error {
	return nil
}

// Verify reports whether the extension is set up correctly under the
// two-phase contract. By default, do nothing.
//
// Deprecated: fold verification into Entrypoint instead.
func (m *Manifest) Verify(context.Context) error {
	return nil
}

func (m *Manifest) declaration() *Manifest {
	return m
}

// Extension is satisfied by *Manifest and by any type embedding Manifest or
// *Manifest. The unexported method keeps unrelated types out.
type Extension interface {
	SignalTypes() []SignalType
	ContentTypes() []ContentType
	APIs() []ExchangeAPI

	Entrypoint(ctx context.Context) error
	Bootstrap(ctx context.Context) error
	Verify(ctx context.Context) error

	declaration() *Manifest
}

var _ Extension = (*Manifest)(nil)

// HookMode selects which hook contract the loader drives.
type HookMode int

const (
	// HookEntrypoint calls Entrypoint once.
	HookEntrypoint HookMode = iota
	// HookBootstrapVerify calls Bootstrap, then Verify. Legacy contract for
	// extensions written before Entrypoint existed.
	HookBootstrapVerify
)

// String returns the configuration name of the mode.
func (m HookMode) String() string {
	switch m {
	case HookEntrypoint:
		return "entrypoint"
	case HookBootstrapVerify:
		return "bootstrap-verify"
	default:
		return fmt.Sprintf("HookMode(%d)", int(m))
	}
}

// ParseHookMode converts a configuration value into a HookMode.
// An empty string selects HookEntrypoint.
func ParseHookMode(raw string) (HookMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "entrypoint":
		return HookEntrypoint, nil
	case "bootstrap-verify", "bootstrap_verify", "two-phase":
		return HookBootstrapVerify, nil
	default:
		return HookEntrypoint, fmt.Errorf("%w %q (use entrypoint or bootstrap-verify)", ErrUnknownHookMode, raw)
	}
}

func (m HookMode) valid() bool {
	return m == HookEntrypoint || m == HookBootstrapVerify
}

// nilDescriptor describes the first nil descriptor ext declares, or returns
// "" if there is none.
func nilDescriptor(ext Extension) string {
	if i := firstNil(ext.SignalTypes()); i >= 0 {
		return fmt.Sprintf("signal type %d is nil", i)
	}
	if i := firstNil(ext.ContentTypes()); i >= 0 {
		return fmt.Sprintf("content type %d is nil", i)
	}
	if i := firstNil(ext.APIs()); i >= 0 {
		return fmt.Sprintf("api %d is nil", i)
	}
	return ""
}

func firstNil[T any](items []T) int {
	for i, item := range items {
		if isNil(item) {
			return i
		}
	}
	return -1
}
