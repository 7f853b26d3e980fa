// Package extension provides run-time registries that allow stepflow to work
// with user-defined node types and their Go configuration types.
//
// The registries are normally populated through the public APIs under the
// root stepflow package, therefore most applications do not need to import
// this package directly.
package extension
