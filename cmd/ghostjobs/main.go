// Command ghostjobs is the command-line companion of the checker API.
//
//	ghostjobs check [-api URL] [-wake] [-reveal] [-json] <posting-url>
//	ghostjobs sitemap [-out public/sitemap.xml] [-origin URL] [-feed URL]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/trusted-tools/ghostjobs/internal/cli"
	"github.com/trusted-tools/ghostjobs/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, cli.ErrUsage)
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := &cli.Runner{
		Stdout: os.Stdout,
		Logger: logging.NewLogger(os.Stderr, "ghostjobs", logging.LevelWarn),
	}
	if err := runner.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "ghostjobs %s: %v\n", args.Command, err)
		return 1
	}
	return 0
}
