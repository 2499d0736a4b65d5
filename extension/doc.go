// Package extension provides run-time registries binding named presentation
// adapters and their Go config types, so hosts can plug alternative surfaces
// (terminal, editor plugin, stream) without modifying the engine.
package extension
