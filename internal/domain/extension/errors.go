package extension

import (
	"errors"
	"fmt"
)

// Load failure kinds. A *LoadError matches exactly one of these with errors.Is.
var (
	// ErrModuleNotFound indicates the module identifier did not resolve.
	ErrModuleNotFound = errors.New("module not found")
	// ErrManifestMissing indicates the module does not define TXManifest.
	ErrManifestMissing = errors.New("manifest missing")
	// ErrManifestTypeMismatch indicates TXManifest is not an Extension.
	ErrManifestTypeMismatch = errors.New("manifest type mismatch")
	// ErrManifestInitFailed indicates the initialization hook failed.
	ErrManifestInitFailed = errors.New("manifest init failed")
	// ErrManifestVerifyFailed indicates the verification hook failed.
	ErrManifestVerifyFailed = errors.New("manifest verify failed")
)

// Resolution errors returned by resolvers and modules.
var (
	// ErrEmptyModuleID indicates an empty module identifier was registered.
	ErrEmptyModuleID = errors.New("module identifier cannot be empty")
	// ErrNilModule indicates a nil module was registered.
	ErrNilModule = errors.New("module cannot be nil")
	// ErrUnknownModule indicates no module is registered under an identifier.
	ErrUnknownModule = errors.New("unknown module")
	// ErrSymbolNotFound indicates a module does not export a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

var (
	// ErrNilDescriptor indicates a manifest declares a nil signal type,
	// content type or API.
	ErrNilDescriptor = errors.New("nil descriptor")
	// ErrUnknownHookMode indicates a HookMode outside the defined contracts.
	ErrUnknownHookMode = errors.New("unknown hook mode")
)

// LoadError describes why an extension module could not be loaded.
type LoadError struct {
	// Kind is one of the ErrModuleNotFound ... ErrManifestVerifyFailed sentinels.
	Kind error
	// Module is the identifier passed to the loader.
	Module string
	// Detail adds kind-specific information, such as the offending type.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

func (e *LoadError) Error() string {
	var msg string
	switch e.Kind {
	case ErrModuleNotFound:
		msg = fmt.Sprintf("no such module %q", e.Module)
	case ErrManifestMissing:
		msg = fmt.Sprintf("module %q is missing %s", e.Module, ManifestSymbol)
	case ErrManifestTypeMismatch:
		msg = fmt.Sprintf("module %q: %s is not an extension manifest", e.Module, ManifestSymbol)
	case ErrManifestInitFailed:
		msg = fmt.Sprintf("manifest failed to initialize: %s", e.Module)
	case ErrManifestVerifyFailed:
		msg = fmt.Sprintf("manifest failed verification: %s", e.Module)
	default:
		msg = fmt.Sprintf("loading module %q", e.Module)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Suggestion returns an actionable hint for the failure kind.
func (e *LoadError) Suggestion() string {
	switch e.Kind {
	case ErrModuleNotFound:
		return "check the module identifier and that the extension is compiled in or present in the plugin directory"
	case ErrManifestMissing:
		return fmt.Sprintf("define an exported variable named %s in the extension module", ManifestSymbol)
	case ErrManifestTypeMismatch:
		return fmt.Sprintf("assign %s a *extension.Manifest or a type embedding extension.Manifest", ManifestSymbol)
	case ErrManifestInitFailed, ErrManifestVerifyFailed:
		return "the extension's own setup failed; fix its environment or remove it from the configuration"
	default:
		return ""
	}
}

// HookPanicError wraps a value recovered from a panicking hook.
type HookPanicError struct {
	Hook  string
	Value any
}

func (e *HookPanicError) Error() string {
	return fmt.Sprintf("%s hook panicked: %v", e.Hook, e.Value)
}

// ModuleExistsError indicates a module identifier is already registered.
type ModuleExistsError struct {
	ID string
}

func (e *ModuleExistsError) Error() string {
	return fmt.Sprintf("module %q already registered", e.ID)
}

// ConflictError indicates two extensions provide a descriptor with the same name.
type ConflictError struct {
	Kind     string
	Name     string
	Existing string
	Incoming string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q from %s conflicts with %s", e.Kind, e.Name, e.Incoming, e.Existing)
}

// IsModuleNotFound returns true if the module identifier did not resolve.
func IsModuleNotFound(err error) bool {
	return errors.Is(err, ErrModuleNotFound)
}

// IsManifestMissing returns true if the module lacks TXManifest.
func IsManifestMissing(err error) bool {
	return errors.Is(err, ErrManifestMissing)
}

// IsManifestTypeMismatch returns true if TXManifest has the wrong type.
func IsManifestTypeMismatch(err error) bool {
	return errors.Is(err, ErrManifestTypeMismatch)
}

// IsManifestInitFailed returns true if the initialization hook failed.
func IsManifestInitFailed(err error) bool {
	return errors.Is(err, ErrManifestInitFailed)
}

// IsManifestVerifyFailed returns true if the verification hook failed.
func IsManifestVerifyFailed(err error) bool {
	return errors.Is(err, ErrManifestVerifyFailed)
}

// IsModuleExists returns true if a module identifier is already registered.
func IsModuleExists(err error) bool {
	var existsErr *ModuleExistsError
	return errors.As(err, &existsErr)
}

// IsConflict returns true if the error is a descriptor name conflict.
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}
