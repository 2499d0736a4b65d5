package protocol

import "regexp"

// Sentinels delimiting protocol events within the interpreter's otherwise
// free-form output stream. They are chosen to be implausible in ordinary
// program output.
const (
	ReadySentinel   = "<<<READY>>>"
	SuccessSentinel = "<<<SUCCESS>>>"
	ErrorSentinel   = "<<<ERROR>>>"

	typeSentinelPrefix = "<<<TYPE:"
	sentinelClose      = ">>>"
)

// typeSentinel extracts the runtime type name an expression evaluation
// reports ahead of its SUCCESS sentinel, consuming one trailing line break.
var typeSentinel = regexp.MustCompile(`<<<TYPE:([^>]*)>>>\n?`)
