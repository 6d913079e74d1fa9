package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/npillmayer/relex/format"
	"github.com/npillmayer/relex/grammar"
	"github.com/npillmayer/relex/lang"
	"github.com/npillmayer/relex/tree"
	"github.com/npillmayer/relex/treebuild"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

// tracer traces with key 'relex.repl'.
func tracer() tracing.Trace {
	return tracing.Select("relex.repl")
}

// main() starts an interactive CLI where users may enter text lines to be
// tokenized against one of the bundled grammars. The resulting token tree
// is printed, and the line is echoed with the theme's colors. Intended as
// a sandbox for experiments during grammar development.
func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	langname := flag.String("lang", "nonsense", "Grammar to use [nonsense|json]")
	flag.Parse()
	tracer().SetTraceLevel(traceLevel(*tlevel))
	pterm.Info.Println("Welcome to the relex REPL")
	//
	intp := &Intp{theme: format.DefaultTheme()}
	if !intp.selectLang(*langname) {
		pterm.Error.Printf("unknown grammar: %s\n", *langname)
		os.Exit(2)
	}
	repl, err := readline.New("relex> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp.repl = repl
	tracer().Infof("Quit with <ctrl>D")
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}

// Intp is our interpreter object.
type Intp struct {
	repl  *readline.Instance
	root  *grammar.Lexicon
	theme *format.Theme
}

func (intp *Intp) selectLang(name string) bool {
	switch strings.ToLower(name) {
	case "nonsense":
		intp.root = lang.NonsenseRoot()
	case "json":
		intp.root = lang.JsonRoot()
	default:
		return false
	}
	return grammar.Validate(intp.root) == nil
}

// REPL is the read-eval-print loop. Lines starting with ':' are
// commands; everything else is tokenized.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF on ctrl-D
			if err != io.EOF {
				tracer().Errorf(err.Error())
			}
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if !intp.command(line[1:]) {
				break
			}
			continue
		}
		intp.lex(line)
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) command(cmd string) bool {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case "quit", "q":
		return false
	case "lang":
		if len(fields) < 2 || !intp.selectLang(fields[1]) {
			pterm.Error.Println("usage: :lang nonsense|json")
		} else {
			pterm.Info.Printf("using grammar %s\n", intp.root.FullName())
		}
	case "help", "h":
		pterm.Info.Println(":lang <name> select grammar, :quit to leave")
	default:
		pterm.Error.Printf("unknown command :%s\n", fields[0])
	}
	return true
}

// lex tokenizes a line, prints the token tree and the styled line.
func (intp *Intp) lex(line string) {
	builder := treebuild.New(intp.root)
	root, err := builder.Tree(line)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	ll := tree.LeveledList(root)
	root2 := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(root2).Render()
	if open := builder.OpenLexicons(); len(open) > 0 {
		names := make([]string, len(open))
		for i, lx := range open {
			names[i] = lx.FullName()
		}
		pterm.Info.Printf("open lexicons: %s\n", strings.Join(names, ", "))
	}
	var sb strings.Builder
	if err := format.NewTermFormatter(intp.theme).Format(&sb, line, root); err == nil {
		fmt.Println(sb.String())
	}
}
