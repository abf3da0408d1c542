// Command unichat lists the configured AI providers and chats with them.
//
//	unichat --config-dir ./config providers
//	unichat configs ACME
//	unichat send --provider ACME --index 0 --api openai "Hello"
//	unichat chat --watch
package main

import (
	"io"
	"os"

	_ "github.com/leofalp/unichat/providers/ai/all"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit))
}

// run parses args and executes the selected command. exit is called by the
// parser for --help and usage errors.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, exit func(int)) int {
	var c cli
	parser, err := newParser(&c, stdout, stderr, exit)
	if err != nil {
		printError(stderr, err)
		return 2
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		printError(stderr, err)
		return 2
	}

	a, err := c.newApp(stdin, stdout, stderr)
	if err != nil {
		printError(stderr, err)
		return 1
	}

	if err := ctx.Run(a); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}
