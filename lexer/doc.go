/*
Package lexer produces a stream of events from lexing text.

A Lexer holds a stack of active lexicons (the bottom one is the root
lexicon, which is never popped), a position, and the text. Each call to
Next performs one step: match the top lexicon's rules at or after the
current position, evaluate the matched rule's action and targets, apply
the targets to the stack, and return an Event.

Events are a lossless, linear representation of the lex: an event carries
the produced lexemes (possibly none, for skip rules and pure state
changes) and the net stack change (or nil).

The lexer detects circular default targets: if a state is revisited at the
same text position without advancing, the position is forced one character
ahead.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexer

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("relex.lexer")
}
