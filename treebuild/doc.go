/*
Package treebuild builds a token tree from lexer events, and rebuilds
only part of it after an edit.

A Builder owns a root context. Build tokenizes a full text; Rebuild
re-tokenizes only the modified region: it finds a restart point left of
the edit, replays the lexer from there, and re-attaches the unchanged
tokens right of the edit as soon as a replayed token matches one of them
in position and lexicon ancestry. New nodes are produced into a staging
tree and spliced into the root context in one step after the replay has
completed, so an interrupted rebuild leaves the tree unchanged. The splice
modifies the root context in place and is not isolated from concurrent
readers; it happens between the "replace" and "updated" events.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package treebuild

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.build'.
func tracer() tracing.Trace {
	return tracing.Select("relex.build")
}
