// Package rawtext is the built-in extension for plain text: a raw_text signal
// type, a text content type and a local_file exchange API.
//
// Importing the package registers it under ModuleID.
package rawtext

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/felixgeelhaar/txext/internal/domain/extension"
	"github.com/felixgeelhaar/txext/internal/ports"
)

// ModuleID is the identifier the extension is registered under.
const ModuleID = "txext.extensions.rawtext"

// ErrNotPrepared is returned when the normalizer is used before the
// extension has been loaded.
var ErrNotPrepared = errors.New("rawtext: normalizer not prepared")

// Signal is the raw_text signal type.
type Signal struct{}

// Name returns "raw_text".
func (Signal) Name() string { return "raw_text" }

// Content is the text content type.
type Content struct{}

// Name returns "text".
func (Content) Name() string { return "text" }

// LocalFileAPI is the local_file exchange API.
type LocalFileAPI struct{}

// Name returns "local_file".
func (LocalFileAPI) Name() string { return "local_file" }

type manifest struct {
	extension.Manifest
}

// TXManifest declares the extension contents.
var TXManifest = &manifest{
	Manifest: *extension.NewManifest(
		extension.WithSignalTypes(Signal{}),
		extension.WithContentTypes(Content{}),
		extension.WithAPIs(LocalFileAPI{}),
	),
}

func init() {
	extension.MustRegister(ModuleID, extension.Symbols{extension.ManifestSymbol: TXManifest})
}

var (
	mu       sync.RWMutex
	replacer *strings.Replacer
)

// Entrypoint prepares the process-wide normalizer.
func (m *manifest) Entrypoint(ctx context.Context) error {
	prepare(ctx)
	return nil
}

// Bootstrap prepares the normalizer under the two-phase contract.
func (m *manifest) Bootstrap(ctx context.Context) error {
	prepare(ctx)
	return nil
}

// Verify fails if Bootstrap has not prepared the normalizer.
func (m *manifest) Verify(context.Context) error {
	if !Prepared() {
		return ErrNotPrepared
	}
	return nil
}

func prepare(ctx context.Context) {
	mu.Lock()
	defer mu.Unlock()

	replacer = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"\u00a0", " ",
	)
	if log := ports.LoggerFromContext(ctx); log != nil {
		log.Debug(ctx, "rawtext normalizer prepared")
	}
}

// Prepared reports whether the normalizer is ready.
func Prepared() bool {
	mu.RLock()
	defer mu.RUnlock()
	return replacer != nil
}

// Normalize lowercases text, folds typographic quotes, drops punctuation
// other than apostrophes and collapses whitespace.
func Normalize(text string) (string, error) {
	mu.RLock()
	r := replacer
	mu.RUnlock()
	if r == nil {
		return "", ErrNotPrepared
	}

	text = strings.ToLower(r.Replace(text))
	text = strings.Map(func(c rune) rune {
		if unicode.IsPunct(c) && c != '\'' {
			return ' '
		}
		return c
	}, text)
	return strings.Join(strings.Fields(text), " "), nil
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	replacer = nil
}
