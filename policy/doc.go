// Package policy provides optional declarative rules applied before any code
// is sent to the interpreter - for example to require confirmation per file
// or to block execution of selected documents.
package policy
