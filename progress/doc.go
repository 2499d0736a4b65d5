// Package progress defines primitives for reporting run activity to the
// host.  It abstracts away the delivery mechanism so that busy indicators
// and counters can be consumed uniformly whether rendered in a status bar,
// streamed to clients or logged.
package progress
