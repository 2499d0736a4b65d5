// Package model defines the core value types shared across the engine:
// positions, selections, code ranges, documents and syntactic range chains.
// All line and column indexes are zero based unless stated otherwise.
package model
