/*
Package grammar defines languages, lexicons and rules.

A Language is a namespace grouping named lexicons. A Lexicon is an ordered
set of rules, compiled on first use into a single alternation regular
expression. A Rule combines a pattern, an action and a list of targets.
Patterns, actions and targets may be dynamic items, evaluated against the
regular expression match at the time a rule fires.

Lexicons may be parameterized with a hashable argument, forming derived
lexicons; derived lexicons are cached, so equal identities
(language, name, argument) yield the same lexicon object.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'relex.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("relex.grammar")
}
