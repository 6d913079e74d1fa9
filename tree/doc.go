/*
Package tree defines the token tree built from lexing text.

A tree consists of two node types: Token, a lexed piece of text carrying
an action, and Context, an ordered sequence of tokens and sub-contexts
belonging to one lexicon. The root context's parent is nil. Tokens that
originated from a single regular expression match form a group: each
carries a group index, the last one a negative index; group members are
always contiguous and share one parent.

Invariants maintained by the builder and relied upon here: children of a
context are ordered by position; a context's extent is derived from its
first and last descendant token; every non-root node's parent contains it;
an empty non-root context is never attached.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.tree'.
func tracer() tracing.Trace {
	return tracing.Select("relex.tree")
}
