package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/providers/ai"
)

type cmdProviders struct{}

func (cmdProviders) Run(a *app) error {
	names, err := a.store.ListProviders()
	if err != nil {
		return err
	}
	for _, name := range names {
		configs, err := a.store.Configs(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s (%d configs)\n", name, len(configs))
	}
	return nil
}

type cmdConfigs struct {
	Provider string `arg:"" help:"Provider name."`
}

func (c cmdConfigs) Run(a *app) error {
	configs, err := a.store.Configs(c.Provider)
	if err != nil {
		return err
	}
	for i, cfg := range configs {
		line := fmt.Sprintf("%d: %s - %s", i, cfg.ModelName, cfg.ModelURL)
		if !cfg.Complete() {
			line += " (incomplete)"
		}
		fmt.Fprintln(a.stdout, line)
		fmt.Fprintf(a.stdout, "   api: %s\n", joinAPITypes(cfg.SupportedAPITypes))
	}
	return nil
}

type cmdSend struct {
	Selection selection `embed:""`
	Message   []string  `arg:"" help:"Message to send."`
}

func (c cmdSend) Run(a *app) error {
	sel := c.Selection.withDefaults(a.defaults)
	if !sel.complete() {
		return apierr.New(apierr.ErrInvalidParameter, "unichat.send",
			"no %s given and none in defaults.json", strings.Join(sel.missing(), ", "))
	}
	apiType, err := sel.apiType()
	if err != nil {
		return err
	}

	mgr := a.manager()
	defer mgr.CloseAll()

	if _, err := mgr.Configure(sel.Provider, sel.Index, apiType); err != nil {
		return err
	}
	sess, err := mgr.CreateSession()
	if err != nil {
		return err
	}
	if err := sess.ClearHistory(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reply, ok, err := sess.Send(ctx, strings.Join(c.Message, " "))
	if err != nil {
		return err
	}
	if !ok {
		if cause := sess.LastError(); cause != nil {
			return fmt.Errorf("no reply: %w", cause)
		}
		return errors.New("no reply: the model returned an empty response")
	}

	fmt.Fprintln(a.stdout, reply)
	return nil
}

func joinAPITypes(types []ai.APIType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
