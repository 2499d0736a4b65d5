// Package selector computes the minimal enclosing executable block for a
// cursor position or selection, using an external syntactic-range oracle to
// discover statement and block boundaries.
package selector
