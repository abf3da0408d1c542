package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/core/config"
	"github.com/leofalp/unichat/core/connection"
	"github.com/leofalp/unichat/core/credentials"
	"github.com/leofalp/unichat/providers/ai"
	"github.com/leofalp/unichat/providers/observability/slogobs"
)

type cli struct {
	ConfigDir string `name:"config-dir" env:"UNICHAT_CONFIG_DIR" default:"./config" type:"path" help:"Directory holding providers.json, secret.json and defaults.json."`
	EnvFile   string `name:"env-file" type:"path" help:"Optional .env file consulted for credentials missing from secret.json."`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error). Defaults to UNICHAT_LOG_LEVEL, then defaults.json."`
	LogFormat string `name:"log-format" help:"Log format (compact, pretty, json). Defaults to UNICHAT_LOG_FORMAT, then defaults.json."`

	Providers cmdProviders `cmd:"" help:"List the configured providers."`
	Configs   cmdConfigs   `cmd:"" help:"List the configurations of a provider."`
	Send      cmdSend      `cmd:"" help:"Send a single message and print the reply."`
	Chat      cmdChat      `cmd:"" help:"Start an interactive chat."`
}

func newParser(c *cli, stdout, stderr io.Writer, exit func(int)) (*kong.Kong, error) {
	return kong.New(c,
		kong.Name("unichat"),
		kong.Description("Provider-agnostic chat client driven by JSON provider configurations."),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.UsageOnError(),
	)
}

// app carries what every command needs. It is bound into kong's Run.
type app struct {
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	logger       *slog.Logger
	store        *config.Store
	resolver     *credentials.Resolver
	defaults     config.Defaults
	openPrompter func() (prompter, error)
}

func (c *cli) newApp(stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	// defaults.json may carry logging hints, so it is read before the
	// logger exists.
	defaults, err := config.NewDirStore(c.ConfigDir, config.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).Defaults()
	if err != nil {
		return nil, err
	}

	logger, err := c.logger(stderr, defaults.Logging)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	store := config.NewDirStore(c.ConfigDir, config.WithLogger(logger))

	resolverOpts := []credentials.Option{credentials.WithEnvFallback(), credentials.WithLogger(logger)}
	if c.EnvFile != "" {
		resolverOpts = append(resolverOpts, credentials.WithDotEnv(c.EnvFile))
	}

	a := &app{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		logger:   logger,
		store:    store,
		resolver: credentials.NewResolver(store, resolverOpts...),
		defaults: defaults,
	}
	a.openPrompter = func() (prompter, error) { return newPrompter(a.stdin, a.stdout) }
	return a, nil
}

// logger picks level and format from the flags, then the environment, then
// defaults.json.
func (c *cli) logger(out io.Writer, hints config.LoggingDefaults) (*slog.Logger, error) {
	level := slogobs.LevelFromEnv()
	switch {
	case c.LogLevel != "":
		parsed, err := slogobs.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, apierr.Wrap(apierr.ErrInvalidParameter, "unichat", err, "invalid --log-level")
		}
		level = parsed
	case !envSet("UNICHAT_LOG_LEVEL", "LOG_LEVEL") && hints.Level != "":
		if parsed, err := slogobs.ParseLevel(hints.Level); err == nil {
			level = parsed
		}
	}

	format := slogobs.FormatFromEnv()
	switch {
	case c.LogFormat != "":
		format = slogobs.ParseFormat(c.LogFormat)
	case !envSet("UNICHAT_LOG_FORMAT", "LOG_FORMAT") && hints.Format != "":
		format = slogobs.ParseFormat(hints.Format)
	}

	return slogobs.New(slogobs.WithOutput(out), slogobs.WithLevel(level), slogobs.WithFormat(format)), nil
}

func envSet(names ...string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// manager builds a connection manager honouring the timeouts of
// defaults.json.
func (a *app) manager() *connection.Manager {
	opts := []connection.Option{
		connection.WithResolver(a.resolver),
		connection.WithLogger(a.logger),
	}
	if connect, read, ok := a.defaults.Timeouts.Durations(); ok {
		opts = append(opts, connection.WithTimeouts(connect, read))
	}
	return connection.NewManager(a.store, opts...)
}

// selection is the (provider, config index, api type) triple of a command.
// Zero values mean "not chosen".
type selection struct {
	Provider string `help:"Provider name as listed in providers.json."`
	Index    int    `default:"-1" help:"Configuration index of the provider."`
	API      string `name:"api" help:"API type (openai, requests, huggingface_hub)."`
}

// withDefaults fills unset fields from defaults.json.
func (s selection) withDefaults(d config.Defaults) selection {
	if s.Provider == "" {
		s.Provider = d.Provider
	}
	if s.Index < 0 && d.ConfigIndex != nil {
		s.Index = *d.ConfigIndex
	}
	if s.API == "" {
		s.API = d.APIType.String()
	}
	return s
}

func (s selection) complete() bool {
	return s.Provider != "" && s.Index >= 0 && s.API != ""
}

func (s selection) apiType() (ai.APIType, error) {
	return ai.ParseAPIType(s.API)
}

func (s selection) missing() []string {
	var out []string
	if s.Provider == "" {
		out = append(out, "--provider")
	}
	if s.Index < 0 {
		out = append(out, "--index")
	}
	if s.API == "" {
		out = append(out, "--api")
	}
	return out
}

func printError(w io.Writer, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, apierr.ErrConfigLoad):
		msg += "\nhint: check --config-dir or UNICHAT_CONFIG_DIR"
	case errors.Is(err, apierr.ErrCredentialNotFound):
		msg += "\nhint: add the key to secret.json, the environment or an --env-file"
	}
	fmt.Fprintf(w, "unichat: error: %s\n", strings.TrimSpace(msg))
}
