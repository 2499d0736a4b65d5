// Package session manages one persistent interpreter subprocess that keeps a
// shared namespace alive across command submissions. A session enforces the
// single in-flight command invariant: concurrent submissions are rejected,
// never queued.
package session
