package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"nickandperla.net/nock/pkg/nock"
)

const (
	promptMain = "nock> "
	promptCont = "  ... "
)

const helpText = `Enter a noun [subject formula] to evaluate it, e.g. [[2 3] add].
Nouns may span lines until their brackets close.

Commands:
  :def name noun     bind name to noun
  :save name         persist name to the store
  :load name         load name from the store
  :ls                list defined and stored names
  :history name [n]  show the last n stored versions of name
  :stats             show the cost of the last evaluation
  :prelude [file]    save file as the prelude for new sessions (none resets)
  :help              show this help
  :quit              exit
`

func printBanner(out io.Writer) {
	fmt.Fprintln(out, "nock REPL (Ctrl+D to exit, :help for commands)")
	fmt.Fprintln(out)
}

// session runs REPL lines against a runtime.
type session struct {
	rt  *nock.Runtime
	out io.Writer
}

// handle runs one complete input: a command or a noun to evaluate.
func (s *session) handle(src string) (quit bool, err error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return false, nil
	case strings.HasPrefix(src, ":"):
		return s.command(src)
	}

	// Ctrl+C interrupts a long evaluation instead of the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := s.rt.EvalContext(ctx, src)
	if err != nil {
		return false, err
	}
	fmt.Fprintln(s.out, result)
	return false, nil
}

func (s *session) command(src string) (bool, error) {
	name, args := splitCommand(src)
	switch name {
	case ":quit", ":q", ":exit":
		return true, nil

	case ":help", ":h":
		fmt.Fprint(s.out, helpText)

	case ":def", ":d":
		def, value := splitCommand(args)
		if def == "" || value == "" {
			return false, errors.New("usage: :def name noun")
		}
		if err := s.rt.Define(def, value); err != nil {
			return false, err
		}

	case ":save":
		if args == "" {
			return false, errors.New("usage: :save name")
		}
		if err := s.rt.Persist(args); err != nil {
			return false, err
		}
		if mode := s.rt.PersistMode(); mode == nock.PersistNever {
			fmt.Fprintf(s.out, "not saved: persist mode is %s\n", mode)
		} else {
			fmt.Fprintf(s.out, "saved %s\n", args)
		}

	case ":load":
		if args == "" {
			return false, errors.New("usage: :load name")
		}
		v, err := s.rt.Load(args)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "%s = %s\n", args, v)

	case ":ls":
		fmt.Fprintln(s.out, strings.Join(s.rt.Names(), " "))
		if stored, err := s.rt.StoredNames(); err == nil && len(stored) > 0 {
			fmt.Fprintf(s.out, "stored: %s\n", strings.Join(stored, " "))
		}

	case ":history":
		return false, s.history(args)

	case ":stats":
		st := s.rt.Stats()
		fmt.Fprintf(s.out, "%s steps, depth %d, %s (%s evaluations, %s steps in all)\n",
			humanize.Comma(st.Steps), st.MaxDepth, st.Duration,
			humanize.Comma(st.Evals), humanize.Comma(st.TotalSteps))

	case ":prelude":
		var src []byte
		if args != "" {
			var err error
			if src, err = os.ReadFile(args); err != nil {
				return false, errors.Wrap(err, "reading prelude")
			}
		}
		if err := s.rt.SavePrelude(string(src)); err != nil {
			return false, err
		}
		if args == "" {
			fmt.Fprintln(s.out, "prelude reset to default")
		} else {
			fmt.Fprintf(s.out, "prelude saved from %s\n", args)
		}

	default:
		return false, errors.Errorf("unknown command %s (try :help)", name)
	}
	return false, nil
}

func (s *session) history(args string) error {
	name, rest := splitCommand(args)
	if name == "" {
		return errors.New("usage: :history name [n]")
	}
	limit := 10
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return errors.Errorf("bad history limit %q", rest)
		}
		limit = n
	}
	entries, err := s.rt.History(name, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(s.out, "no stored versions of %s\n", name)
		return nil
	}
	for _, e := range entries {
		when := e.Ts
		if ts, err := time.Parse(time.RFC3339, e.Ts); err == nil {
			when = humanize.Time(ts)
		}
		fmt.Fprintf(s.out, "v%-3d %-16s %s\n", e.Version, when, e.Value)
	}
	return nil
}

// splitCommand splits off the first word of s.
func splitCommand(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// needsMore reports whether src is an unfinished noun or :def.
func needsMore(src string) bool {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, ":") {
		name, args := splitCommand(trimmed)
		if name != ":def" && name != ":d" {
			return false
		}
		_, value := splitCommand(args)
		return nock.Incomplete(value)
	}
	return nock.Incomplete(trimmed)
}

// readInput reads lines until they form a complete input.
func readInput(prompt func(string) (string, error), main, cont string) (string, error) {
	var b strings.Builder
	for {
		p := main
		if b.Len() > 0 {
			p = cont
		}
		line, err := prompt(p)
		if err == io.EOF && b.Len() > 0 {
			// Let the evaluator report the unclosed noun.
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !needsMore(b.String()) {
			return b.String(), nil
		}
	}
}

// lineSource feeds piped input to readInput.
type lineSource struct {
	scan *bufio.Scanner
}

func newLineSource(r io.Reader) *lineSource {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &lineSource{scan: scan}
}

func (l *lineSource) next(string) (string, error) {
	if l.scan.Scan() {
		return l.scan.Text(), nil
	}
	if err := l.scan.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func runREPL(rt *nock.Runtime, historyFile string, out io.Writer) error {
	printBanner(out)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(historyFile)
			if err != nil {
				glog.Warningf("repl: saving history: %v", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	s := &session{rt: rt, out: out}
	for {
		src, err := readInput(ln.Prompt, promptMain, promptCont)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		quit, err := s.handle(src)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}
