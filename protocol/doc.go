// Package protocol implements the wire contract between the controller and
// the interpreter subprocess: line-oriented JSON command records on the way
// in, and a sentinel-delimited free-form text stream on the way out. The
// decoder is a streaming parser that tolerates sentinels split across
// arbitrary read-chunk boundaries.
package protocol
