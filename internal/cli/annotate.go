package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustlens/internal/bus"
	"github.com/ppiankov/trustlens/internal/dispatcher"
	"github.com/ppiankov/trustlens/internal/dom"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/overlay"
	"github.com/ppiankov/trustlens/internal/page"
	"github.com/ppiankov/trustlens/internal/worker"
)

var (
	annotateSelect  string
	annotateOut     string
	annotateOffline bool
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <page.html>",
	Short: "Select text in a saved page, verify it and write the annotated page",
	Long: `Annotate loads an HTML page, selects the first occurrence of --select as a
mouse drag would, and runs the selection flow: the page reports the selection,
the result comes back to the tab, the text is highlighted and the floating
card is placed next to it.

Example:
  trustlens annotate article.html --select "study finds" --out annotated.html
  trustlens annotate article.html --select "miracle cure" --offline`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringVarP(&annotateSelect, "select", "s", "", "text to select (required)")
	annotateCmd.Flags().StringVarP(&annotateOut, "out", "o", "", "output file (default: stdout)")
	annotateCmd.Flags().BoolVar(&annotateOffline, "offline", false, "score in-process instead of calling the service")
	_ = annotateCmd.MarkFlagRequired("select")
}

// annotation is what the page loop hands back once a result was applied
type annotation struct {
	outcome page.Outcome
	html    []byte
	err     error
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 1. Load page
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	doc, err := dom.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	store, storage, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout(cfg))
	defer cancel()

	// 2. Wire contexts
	rt := bus.NewRuntime()
	pool := worker.NewPool(cfg.Workers)
	pool.Start()
	defer func() {
		pool.Stop()
		rt.Close()
	}()

	done := make(chan annotation, 1)
	report := func(a annotation) {
		select {
		case done <- a:
		default:
		}
	}
	p := page.New(doc,
		page.WithLogger(logger),
		page.WithOverlay(overlay.WithLayout(cfg.Overlay.DismissAfter, cfg.Overlay.CardWidth, cfg.Overlay.Offset)),
		page.WithObserver(func(out page.Outcome) {
			// Runs on the page loop, so the document is quiescent here
			var buf bytes.Buffer
			err := doc.Render(&buf)
			if out.Card != nil {
				out.Card.Dismiss()
			}
			report(annotation{outcome: out, html: buf.Bytes(), err: err})
		}))

	d := dispatcher.New(newVerifier(cfg, annotateOffline), rt, store,
		dispatcher.WithPool(pool),
		dispatcher.WithLogger(logger),
		dispatcher.WithCompletion(func(_ dispatcher.Request, _ *model.VerificationResult, err error) {
			if err != nil {
				report(annotation{err: fmt.Errorf("verification failed: %w", err)})
			}
		}))
	d.Attach(rt)
	tab := p.Attach(rt, 1)

	// 3. Select and release the mouse
	err = tab.Post(ctx, func(ctx context.Context) {
		if err := p.Select(annotateSelect); err != nil {
			report(annotation{err: err})
			return
		}
		captured, err := p.OnMouseUp(ctx)
		if err != nil {
			report(annotation{err: err})
			return
		}
		if !captured {
			report(annotation{err: fmt.Errorf("selection %q was not captured", annotateSelect)})
		}
	})
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}

	// 4. Wait for the result to land
	var res annotation
	select {
	case res = <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for result: %w", ctx.Err())
	}
	if res.err != nil {
		return res.err
	}
	if !res.outcome.Applied {
		return fmt.Errorf("result not applied: %s", res.outcome.Reason)
	}

	// 5. Write output
	if annotateOut == "" {
		_, err = cmd.OutOrStdout().Write(res.html)
	} else {
		err = os.WriteFile(annotateOut, res.html, 0o644)
	}
	if err != nil {
		return fmt.Errorf("write page: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Annotated %q (highlighted: %v)\n", annotateSelect, res.outcome.Highlighted)
	if annotateOut != "" {
		fmt.Fprintf(os.Stderr, "Written to %s\n", annotateOut)
	}
	return nil
}
