/*
Package relex is an incremental lexing engine.

relex tokenizes text against user-defined, context-sensitive grammars and
keeps a tree of tokens up to date in the face of small, interactive edits.
It is intended for text editors and tooling that must maintain a
syntactically annotated structure of a document while the user types,
without re-tokenizing the whole buffer. Package structure is as follows:

■ grammar: Package grammar defines languages, lexicons and rules, together
with the dynamic rule items that are evaluated against a regular expression
match.

■ lexer: Package lexer produces a linear stream of events from a lexicon
stack and a text.

■ tree: Package tree defines tokens, contexts and group tokens, the
structure built from the event stream.

■ treebuild: Package treebuild converts events into a tree, and rebuilds
only a suffix of the tree after an edit, reusing unchanged tokens.

■ work: Package work runs a builder in a background goroutine, coalescing
edits and publishing consistent snapshots.

■ transform: Package transform computes cached, incrementally updated
transformations of the token tree.

■ lang: Package lang bundles some example grammars.

■ format: Package format renders a token tree with themed colors on a
terminal.

The base package contains the action types and spans which are used
throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package relex
