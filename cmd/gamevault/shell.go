package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/and161185/gamevault/internal/metadata"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/notice"
)

// shell runs an interactive loop that keeps one session and collection alive.
func (a *app) shell(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gamevault> ",
		HistoryFile:     filepath.Join(a.cfg.StateDir, "history"),
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	a.out = rl.Stdout()
	a.password = func(prompt string) (string, error) {
		b, err := rl.ReadPassword(prompt)
		return string(b), err
	}

	fmt.Fprintf(a.out, "gamevault %s. Type 'help' for commands.\n", version)
	if u := a.sessions.Initialize(ctx); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", u.DisplayName)
	}

	for {
		rl.SetPrompt(a.prompt())
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		fields, err := splitArgs(line)
		if err != nil {
			fmt.Fprintln(a.out, err)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		switch cmd := fields[0]; cmd {
		case "exit", "quit", "x":
			return nil
		case "help":
			fmt.Fprint(a.out, usageText)
			fmt.Fprintln(a.out, "  find       live catalogue search while typing")
		case "platforms":
			fmt.Fprintln(a.out, strings.Join(model.Platforms, ", "))
		case "find":
			a.find(ctx, rl)
		case "reload":
			if err := a.games.Load(ctx); err != nil {
				a.report(notice.OpLoad, err)
			}
		default:
			_ = a.dispatch(ctx, cmd, fields[1:])
		}
	}
}

func (a *app) prompt() string {
	if u := a.sessions.Current(); u != nil {
		return fmt.Sprintf("gamevault [%s]> ", u.DisplayName)
	}
	return "gamevault> "
}

// find reads one line while searching the catalogue as the user types.
// Results of superseded queries are dropped by LiveSearch.
func (a *app) find(ctx context.Context, rl *readline.Instance) {
	var mu sync.Mutex
	ls := metadata.NewLiveSearch(a.lookup, a.cfg.SearchDebounce, func(q string, res []metadata.Result) {
		if q == "" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(rl.Stdout())
		printResults(rl.Stdout(), res)
		rl.Refresh()
	})
	rl.Config.SetListener(func(line []rune, _ int, _ rune) ([]rune, int, bool) {
		ls.Input(ctx, string(line))
		return nil, 0, false
	})
	defer rl.Config.SetListener(func([]rune, int, rune) ([]rune, int, bool) { return nil, 0, false })
	defer ls.Stop()

	rl.SetPrompt("find> ")
	if _, err := rl.Readline(); err == nil {
		fmt.Fprintln(a.out, "use 'add -from <id>' to add a result")
	}
}

func completer() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"), readline.PcItem("exit"), readline.PcItem("find"),
		readline.PcItem("reload"), readline.PcItem("platforms"),
	}
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// splitArgs splits a shell line on spaces, honoring single and double quotes.
func splitArgs(line string) ([]string, error) {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote, inArg = r, true
		case r == ' ' || r == '\t':
			if inArg {
				out = append(out, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if inArg {
		out = append(out, cur.String())
	}
	return out, nil
}
