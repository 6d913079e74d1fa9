package lang

import (
	"strconv"
	"strings"

	"github.com/npillmayer/relex"
	"github.com/npillmayer/relex/grammar"
	"github.com/npillmayer/relex/transform"
	"github.com/npillmayer/relex/tree"
	"github.com/npillmayer/relex/treebuild"
)

var jsonEscapes = map[byte]string{
	'b': "\b", 'f': "\f", 'n': "\n", 'r': "\r", 't': "\t",
	'"': `"`, '/': "/", '\\': `\`,
}

// JsonTransformer returns a Transformer decoding a JSON token tree into
// plain Go values: maps, slices, strings, numbers, booleans and nil.
func JsonTransformer() *transform.Transformer {
	t := transform.New()
	t.Add("Json.root", func(lex *grammar.Lexicon, items []transform.Item) interface{} {
		for _, v := range jsonValues(items) {
			return v
		}
		return nil
	})
	t.Add("Json.value", func(lex *grammar.Lexicon, items []transform.Item) interface{} {
		for _, v := range jsonValues(items) {
			return v
		}
		return nil
	})
	t.Add("Json.array", func(lex *grammar.Lexicon, items []transform.Item) interface{} {
		values := jsonValues(items)
		if values == nil {
			values = []interface{}{}
		}
		return values
	})
	t.Add("Json.object", func(lex *grammar.Lexicon, items []transform.Item) interface{} {
		obj := make(map[string]interface{})
		var key string
		var haveKey bool
		for _, it := range items {
			r, ok := it.(transform.Result)
			if !ok {
				continue
			}
			switch r.Lexicon.Name() {
			case "key":
				if s, ok := r.Value.(string); ok {
					key, haveKey = s, true
				}
			case "value":
				if haveKey {
					obj[key] = r.Value
					haveKey = false
				}
			}
		}
		return obj
	})
	t.Add("Json.key", func(lex *grammar.Lexicon, items []transform.Item) interface{} {
		for _, it := range items {
			if r, ok := it.(transform.Result); ok && r.Lexicon.Name() == "string" {
				return r.Value
			}
		}
		return nil
	})
	t.Add("Json.string", func(lex *grammar.Lexicon, items []transform.Item) interface{} {
		var b strings.Builder
		for _, it := range items {
			tok, ok := it.(*tree.Token)
			if !ok || tok.Action() == StringEnd {
				continue
			}
			if tok.Action() == relex.Escape {
				txt := tok.Text()
				if len(txt) > 1 && txt[1] == 'u' {
					if n, err := strconv.ParseUint(txt[2:], 16, 32); err == nil {
						b.WriteRune(rune(n))
					}
					continue
				}
				if len(txt) > 1 {
					b.WriteString(jsonEscapes[txt[1]])
				}
				continue
			}
			b.WriteString(tok.Text())
		}
		return b.String()
	})
	return t
}

// jsonValues collects the values of a context's items the way the
// grammar's shared value rules generate them.
func jsonValues(items []transform.Item) []interface{} {
	var out []interface{}
	for _, it := range items {
		switch x := it.(type) {
		case *tree.Token:
			switch x.Action() {
			case relex.Number:
				n, err := strconv.ParseFloat(x.Text(), 64)
				if err != nil {
					continue
				}
				if n == float64(int64(n)) {
					out = append(out, int(n))
				} else {
					out = append(out, n)
				}
			case relex.NameConstant:
				switch x.Text() {
				case "true":
					out = append(out, true)
				case "false":
					out = append(out, false)
				case "null":
					out = append(out, nil)
				}
			}
		case transform.Result:
			switch x.Lexicon.Name() {
			case "object", "array", "string":
				out = append(out, x.Value)
			}
		}
	}
	return out
}

// DecodeJson tokenizes and decodes a JSON text in one go.
func DecodeJson(text string) (interface{}, error) {
	builder := treebuild.New(JsonRoot())
	root, err := builder.Tree(text)
	if err != nil {
		return nil, err
	}
	t := JsonTransformer()
	if err := t.Process(root, nil); err != nil {
		return nil, err
	}
	return t.Result(root), nil
}
