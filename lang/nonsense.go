package lang

import (
	"sync"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/grammar"
)

// Nonsense is a small language: words and numbers, double-quoted strings,
// comments from '%' to the end of the line, and some punctuation.
//
//    Some text with 3 numbers and "a string",
//    % a comment that ends at newline
//
var nonsenseOnce sync.Once
var nonsense *grammar.Language

// NonsenseLang returns the Nonsense language.
func NonsenseLang() *grammar.Language {
	nonsenseOnce.Do(func() {
		nonsense = grammar.NewLanguage("Nonsense")
		nonsense.Define("root", func(lang *grammar.Language) []grammar.Rule {
			return []grammar.Rule{
				grammar.NewRule(`\d+`, relex.Number),
				grammar.NewRule(`\w+`, relex.Text),
				grammar.NewRule(`"`, relex.String, lang.Lexicon("string")),
				grammar.NewRule(`%`, relex.Comment, lang.Lexicon("comment")),
				grammar.NewRule(`[.,:?!]`, relex.Delimiter),
			}
		})
		nonsense.Define("string", func(lang *grammar.Language) []grammar.Rule {
			return []grammar.Rule{
				grammar.NewRule(`"`, relex.String, -1),
				grammar.DefaultAction(relex.String),
			}
		})
		nonsense.Define("comment", func(lang *grammar.Language) []grammar.Rule {
			return []grammar.Rule{
				grammar.NewRule(`$`, relex.Comment, -1),
				grammar.DefaultAction(relex.Comment),
			}
		}, grammar.ReFlags("m"))
	})
	return nonsense
}

// NonsenseRoot returns the root lexicon of the Nonsense language.
func NonsenseRoot() *grammar.Lexicon {
	return NonsenseLang().Lexicon("root")
}
