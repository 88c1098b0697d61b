package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	CommandCheck   = "check"
	CommandSitemap = "sitemap"

	DefaultAPI        = "http://localhost:3001"
	DefaultSitemapOut = "public/sitemap.xml"
	DefaultOrigin     = "https://ghostjobs.trusted-tools.com"
)

// ErrUsage is returned for a missing or unknown subcommand.
var ErrUsage = errors.New("usage: ghostjobs <check|sitemap> [flags]")

// CLIArgs are the parsed arguments of one ghostjobs invocation.
type CLIArgs struct {
	// Command is the subcommand: check or sitemap.
	Command string

	// check
	API    string
	Target string
	Wake   bool
	Reveal bool
	JSON   bool

	// sitemap
	Out           string
	Origin        string
	FeedURL       string
	ShowScheduled bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	if len(args) == 0 {
		return nil, ErrUsage
	}

	out := &CLIArgs{Command: args[0], RawArgs: args}
	fs := flag.NewFlagSet("ghostjobs "+args[0], flag.ContinueOnError)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	switch args[0] {
	case CommandCheck:
		fs.StringVar(&out.API, "api", DefaultAPI, "Base URL of the checker API")
		fs.StringVar(&out.Target, "url", "", "Job posting URL to check (or pass it as the first argument)")
		fs.BoolVar(&out.Wake, "wake", true, "Wait for a cold-started API to answer its health check first")
		fs.BoolVar(&out.Reveal, "reveal", true, "Reveal signals at their UI delays instead of all at once")
		fs.BoolVar(&out.JSON, "json", false, "Print the raw API response as JSON")
	case CommandSitemap:
		fs.StringVar(&out.Out, "out", DefaultSitemapOut, "File to write")
		fs.StringVar(&out.Origin, "origin", DefaultOrigin, "Public site origin")
		fs.StringVar(&out.FeedURL, "feed", "", "Blog CMS feed URL (empty uses the built-in posts)")
		fs.BoolVar(&out.ShowScheduled, "show-scheduled", false, "Include posts with a future publish date")
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	if err := fs.Parse(args[1:]); err != nil {
		// Flag parsing errors are useful to return to caller
		return nil, err
	}

	if out.Command == CommandCheck {
		if out.Target == "" && fs.NArg() > 0 {
			out.Target = fs.Arg(0)
		}
		out.Target = strings.TrimSpace(out.Target)
		if out.Target == "" {
			return nil, fmt.Errorf("missing job posting URL: pass -url or a positional argument")
		}
	}
	if out.Command == CommandSitemap && strings.TrimSpace(out.Out) == "" {
		return nil, fmt.Errorf("-out must not be empty")
	}

	return out, nil
}
