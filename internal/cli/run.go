package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/analyzer"
	"github.com/trusted-tools/ghostjobs/internal/blog"
	"github.com/trusted-tools/ghostjobs/internal/client"
	"github.com/trusted-tools/ghostjobs/internal/logging"
	"github.com/trusted-tools/ghostjobs/internal/model"
	"github.com/trusted-tools/ghostjobs/internal/reveal"
	"github.com/trusted-tools/ghostjobs/internal/sitemap"
)

var signalTitles = map[string]string{
	reveal.SignalStale:      "Posting freshness",
	reveal.SignalWeak:       "Content patterns",
	reveal.SignalInactivity: "Activity signals",
}

// Runner executes parsed commands.
type Runner struct {
	Stdout     io.Writer
	Logger     logging.Logger
	HTTPClient *http.Client
	Wake       client.WakeOptions
	Now        func() time.Time
}

// Run dispatches args to its subcommand.
func (r *Runner) Run(ctx context.Context, args *CLIArgs) error {
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Logger == nil {
		r.Logger = logging.NewStdoutLogger("ghostjobs")
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	switch args.Command {
	case CommandCheck:
		return r.check(ctx, args)
	case CommandSitemap:
		return r.sitemap(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args.Command)
	}
}

func (r *Runner) check(ctx context.Context, args *CLIArgs) error {
	c, err := client.New(args.API, client.WithLogger(r.Logger), client.WithHTTPClient(r.HTTPClient))
	if err != nil {
		return err
	}

	if args.Wake {
		if !args.JSON {
			fmt.Fprintln(r.Stdout, "Waking checker API...")
		}
		if err := c.WaitHealthy(ctx, r.Wake); err != nil {
			return fmt.Errorf("wake api: %w", err)
		}
	}

	resp, err := c.Analyze(ctx, model.NewAnalyzeRequest(args.Target))
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if args.JSON {
		enc := json.NewEncoder(r.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintf(r.Stdout, "Checking %s\n", args.Target)

	events := reveal.Schedule(*resp)
	if !args.Reveal {
		for i := range events {
			events[i].At = 0
		}
	}

	machine := reveal.NewMachine()
	if err := machine.Start(); err != nil {
		return err
	}
	return reveal.Play(ctx, events, func(ev reveal.Event) error {
		if err := machine.Apply(ev); err != nil {
			return err
		}
		r.printEvent(ev)
		return nil
	})
}

func (r *Runner) printEvent(ev reveal.Event) {
	if ev.Kind == reveal.EventComplete {
		if ev.Score == nil {
			fmt.Fprintln(r.Stdout, "Probability Score: -")
			return
		}
		fmt.Fprintf(r.Stdout, "Probability Score: %d%% (%s)\n", *ev.Score, analyzer.Label(*ev.Score))
		return
	}

	verdict := "ok"
	if ev.Signal.Result {
		verdict = "flagged"
	}
	line := fmt.Sprintf("  %-18s %-7s", signalTitles[ev.Name], verdict)
	if ev.Signal.Info != "" {
		line += "  " + ev.Signal.Info
	}
	fmt.Fprintln(r.Stdout, line)
}

func (r *Runner) sitemap(ctx context.Context, args *CLIArgs) error {
	loader := blog.NewLoader(blog.Config{
		FeedURL:       args.FeedURL,
		ShowScheduled: args.ShowScheduled,
		Fallback:      blog.DefaultPosts(),
	}, r.HTTPClient, r.Logger)

	posts := loader.Load(ctx)
	doc, err := sitemap.Build(args.Origin, posts, r.Now())
	if err != nil {
		return err
	}

	if dir := filepath.Dir(args.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(args.Out, doc, 0o644); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}

	fmt.Fprintf(r.Stdout, "Sitemap generated with %d posts at %s\n", len(posts), args.Out)
	return nil
}
