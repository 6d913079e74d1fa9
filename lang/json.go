package lang

import (
	"sync"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/grammar"
)

// Token categories for string delimiters, shared with the transform.
var (
	StringStart = relex.String.Derive("Start")
	StringEnd   = relex.String.Derive("End")
)

var jsonConstants = []string{"true", "false", "null"}

var jsonEscapePattern = `\\(?:` + grammar.Chars(`bfnrt"/\`, true) + `|u[0-9a-fA-F]{4})`

var jsonOnce sync.Once
var json *grammar.Language

// JsonLang returns the JSON language. Numbers become Number tokens,
// true/false/null become Name.Constant tokens, strings are lexed in
// 'string' contexts with escape tokens. Objects become 'object' contexts
// with alternating 'key' and 'value' child contexts; arrays become
// 'array' contexts.
func JsonLang() *grammar.Language {
	jsonOnce.Do(func() {
		json = grammar.NewLanguage("Json")
		values := func(lang *grammar.Language) []grammar.Rule {
			return []grammar.Rule{
				grammar.NewRule(`\{`, relex.Delimiter, lang.Lexicon("object")),
				grammar.NewRule(`\[`, relex.Delimiter, lang.Lexicon("array")),
				grammar.NewRule(`"`, StringStart, lang.Lexicon("string")),
				grammar.NewRule(`-?\d+(?:\.\d+)?(?:[Ee][+-]?\d+)?`, relex.Number),
				grammar.NewRule(grammar.Words(jsonConstants, `\b`, `\b`), relex.NameConstant),
			}
		}
		json.Define("root", func(lang *grammar.Language) []grammar.Rule {
			return values(lang)
		})
		json.Define("object", func(lang *grammar.Language) []grammar.Rule {
			return []grammar.Rule{
				grammar.NewRule(`\}`, relex.Delimiter, -1),
				grammar.NewRule(`\s+`, relex.Skip),
				grammar.DefaultTarget(lang.Lexicon("key")),
			}
		})
		json.Define("key", func(lang *grammar.Language) []grammar.Rule {
			return []grammar.Rule{
				grammar.NewRule(`"`, StringStart, lang.Lexicon("string")),
				grammar.NewRule(`:`, relex.Delimiter, -1, lang.Lexicon("value")),
			}
		})
		json.Define("value", func(lang *grammar.Language) []grammar.Rule {
			return append(values(lang),
				grammar.NewRule(`,`, relex.Delimiter, -1),
				grammar.NewRule(`\}`, relex.Delimiter, -2),
			)
		})
		json.Define("array", func(lang *grammar.Language) []grammar.Rule {
			return append(values(lang),
				grammar.NewRule(`,`, relex.Delimiter),
				grammar.NewRule(`\]`, relex.Delimiter, -1),
			)
		})
		json.Define("string", func(lang *grammar.Language) []grammar.Rule {
			return []grammar.Rule{
				grammar.NewRule(`"`, StringEnd, -1),
				grammar.NewRule(jsonEscapePattern, relex.Escape),
				grammar.DefaultAction(relex.String),
			}
		})
	})
	return json
}

// JsonRoot returns the root lexicon of the JSON language.
func JsonRoot() *grammar.Lexicon {
	return JsonLang().Lexicon("root")
}
