// Package extension defines the extension manifest convention and the loader
// that discovers extensions by module identifier.
//
// An extension module exports a value named TXManifest: a *Manifest, or a
// type embedding Manifest, listing the signal types, content types and
// exchange APIs it contributes. Modules are found through a Resolver. The
// default resolver is an in-process Registry that extension packages populate
// from init; SharedObjectResolver loads Go plugins from a directory.
//
// Loading runs the manifest's hooks. Under HookEntrypoint the loader calls
// Entrypoint once; under the deprecated HookBootstrapVerify it calls
// Bootstrap and then Verify.
package extension
