package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/core/config"
	"github.com/leofalp/unichat/core/connection"
	"github.com/leofalp/unichat/providers/ai"
	"github.com/leofalp/unichat/providers/observability"
)

type cmdChat struct {
	Selection selection `embed:""`
	Watch     bool      `help:"Clear the configuration cache whenever a file in --config-dir changes."`
}

func (c cmdChat) Run(a *app) error {
	p, err := a.openPrompter()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads <-chan string
	if c.Watch {
		w, err := config.NewWatcher(a.store, a.logger)
		if err != nil {
			return err
		}
		defer w.Close()
		go func() { _ = w.Run(ctx) }()
		reloads = w.Reloads()
	}

	mgr := a.manager()
	defer mgr.CloseAll()

	sess, err := a.setup(mgr, p, c.Selection.withDefaults(a.defaults))
	if err != nil {
		return err
	}
	a.banner(sess)

	for {
		select {
		case name := <-reloads:
			fmt.Fprintf(a.stdout, "Configuration changed (%s). Use /new to apply it.\n", name)
		default:
		}

		line, err := p.Prompt("You: ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(a.stdout, "\nGoodbye!")
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			next, quit, err := a.slashCommand(input, sess, mgr, p)
			if err != nil {
				fmt.Fprintf(a.stdout, "Error: %v\n", err)
				continue
			}
			if quit {
				fmt.Fprintln(a.stdout, "Goodbye!")
				return nil
			}
			sess = next
			continue
		}

		// Ctrl+C while waiting for a reply cancels only that request.
		msgCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		reply, ok, err := sess.Send(msgCtx, input)
		stop()

		switch {
		case err != nil:
			fmt.Fprintf(a.stdout, "Error: %v\n\n", err)
		case ok:
			fmt.Fprintf(a.stdout, "AI: %s\n\n", reply)
		default:
			fmt.Fprintf(a.stdout, "Error getting response: %v\n\n", describe(sess.LastError()))
		}
	}
}

func (a *app) banner(sess *connection.Session) {
	params := sess.Params()
	fmt.Fprintf(a.stdout, "\nChat started with %s - %s\n", params.Provider, sess.ModelName())
	fmt.Fprintln(a.stdout, "Type /help for commands, Ctrl+D to exit.")
	fmt.Fprintln(a.stdout)
}

// slashCommand runs one chat command. It returns the session to continue
// with, which changes after /new.
func (a *app) slashCommand(input string, sess *connection.Session, mgr *connection.Manager, p prompter) (*connection.Session, bool, error) {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/exit", "/quit":
		return sess, true, nil

	case "/clear":
		if err := sess.ClearHistory(); err != nil {
			return sess, false, err
		}
		fmt.Fprintln(a.stdout, "History cleared.")
		return sess, false, nil

	case "/history":
		history := sess.History()
		if args := strings.Fields(input)[1:]; len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return sess, false, fmt.Errorf("invalid message count %q", args[0])
			}
			history = sess.LastMessages(n)
		}
		if len(history) == 0 {
			fmt.Fprintln(a.stdout, "(empty)")
		}
		for _, m := range history {
			fmt.Fprintf(a.stdout, "[%s] %s\n", m.Role, m.Content)
		}
		return sess, false, nil

	case "/new":
		next, err := a.setup(mgr, p, selection{Index: -1})
		if err != nil {
			return sess, false, err
		}
		if err := sess.Close(); err != nil {
			a.logger.Warn("Failed to close previous session", slog.String(observability.AttrError, err.Error()))
		}
		a.banner(next)
		return next, false, nil

	case "/help":
		fmt.Fprintln(a.stdout, "/clear         reset the conversation to the init message")
		fmt.Fprintln(a.stdout, "/history [n]   print the conversation, or its last n messages")
		fmt.Fprintln(a.stdout, "/new           pick another provider configuration")
		fmt.Fprintln(a.stdout, "/exit          leave the chat")
		return sess, false, nil

	default:
		return sess, false, fmt.Errorf("unknown command %s (try /help)", input)
	}
}

// setup asks for every part of sel that is still unset, configures mgr and
// returns a fresh session seeded with the init message.
func (a *app) setup(mgr *connection.Manager, p prompter, sel selection) (*connection.Session, error) {
	if sel.Provider == "" {
		providers, err := mgr.Providers()
		if err != nil {
			return nil, err
		}
		i, err := a.choose(p, "provider", providers)
		if err != nil {
			return nil, err
		}
		sel.Provider = providers[i]
	}

	if sel.Index < 0 {
		configs, err := mgr.ProviderConfigs(sel.Provider)
		if err != nil {
			return nil, err
		}
		labels := make([]string, len(configs))
		for i, cfg := range configs {
			labels[i] = cfg.ModelName + " - " + cfg.ModelURL
		}
		if sel.Index, err = a.choose(p, "configuration", labels); err != nil {
			return nil, err
		}
	}

	if sel.API == "" {
		types, err := mgr.SupportedAPITypes(sel.Provider, sel.Index)
		if err != nil {
			return nil, err
		}
		labels := make([]string, len(types))
		for i, t := range types {
			labels[i] = t.String()
		}
		i, err := a.choose(p, "API", labels)
		if err != nil {
			return nil, err
		}
		sel.API = labels[i]
	}

	apiType, err := ai.ParseAPIType(sel.API)
	if err != nil {
		return nil, err
	}
	if _, err := mgr.Configure(sel.Provider, sel.Index, apiType); err != nil {
		return nil, err
	}

	sess, err := mgr.CreateSession()
	if err != nil {
		return nil, err
	}
	if err := sess.ClearHistory(); err != nil {
		return nil, err
	}
	return sess, nil
}

// choose prints a numbered menu and reads the index of the chosen entry. A
// single option is picked without asking.
func (a *app) choose(p prompter, what string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, apierr.New(apierr.ErrNotFound, "unichat.setup", "no %s available", what)
	}
	if len(options) == 1 {
		fmt.Fprintf(a.stdout, "%s chosen: %s\n", capitalize(what), options[0])
		return 0, nil
	}

	fmt.Fprintf(a.stdout, "\nAvailable %ss:\n", what)
	for i, opt := range options {
		fmt.Fprintf(a.stdout, "%d: %s\n", i, opt)
	}

	answer, err := p.Prompt("Choose a " + what + ": ")
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || i < 0 || i >= len(options) {
		return 0, apierr.New(apierr.ErrInvalidParameter, "unichat.setup", "%s not found: %q", what, strings.TrimSpace(answer))
	}
	fmt.Fprintf(a.stdout, "%s chosen: %s\n", capitalize(what), options[i])
	return i, nil
}

func capitalize(s string) string {
	if s == "" || s == strings.ToUpper(s) {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func describe(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}

// prompter reads one line of user input after printing a label.
type prompter interface {
	Prompt(label string) (string, error)
	Close() error
}

// newPrompter uses liner on an interactive terminal and a plain line reader
// otherwise (pipes, tests).
func newPrompter(stdin io.Reader, stdout io.Writer) (prompter, error) {
	if f, ok := stdin.(*os.File); ok && f == os.Stdin && term.IsTerminal(int(f.Fd())) {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		return &linerPrompter{state: state}, nil
	}
	return &linePrompter{scanner: bufio.NewScanner(stdin), out: stdout}, nil
}

type linerPrompter struct {
	state *liner.State
}

func (l *linerPrompter) Prompt(label string) (string, error) {
	line, err := l.state.Prompt(label)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		l.state.AppendHistory(line)
	}
	return line, nil
}

func (l *linerPrompter) Close() error {
	return l.state.Close()
}

type linePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (l *linePrompter) Prompt(label string) (string, error) {
	fmt.Fprint(l.out, label)
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return l.scanner.Text(), nil
}

func (l *linePrompter) Close() error {
	return nil
}
