package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/BernardRegaspi/portfolio/internal/navigation"
	"github.com/BernardRegaspi/portfolio/internal/scrolllock"
	"github.com/BernardRegaspi/portfolio/internal/transition"
)

var transitionOpts playOptions

type playOptions struct {
	From  string
	To    string
	Every int
	// Menu opens the navigation dialog first and follows the link from it.
	Menu bool
}

var transitionCmd = &cobra.Command{
	Use:   "transition <path>",
	Short: "Play the page transition to <path> in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		opts := transitionOpts
		opts.To = args[0]
		return playTransition(ctx, cmd.OutOrStdout(), opts)
	},
}

// termRenderer draws every nth frame as one line per overlay row.
type termRenderer struct {
	w     io.Writer
	every int
	start time.Time

	mu    sync.Mutex
	frame int
}

const cellWidth = 6

func (r *termRenderer) Render(blocks []transition.Block) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame++
	if r.every > 1 && r.frame%r.every != 0 {
		return
	}
	r.draw(blocks)
}

func (r *termRenderer) draw(blocks []transition.Block) {
	var rows [][]string
	for _, b := range blocks {
		for len(rows) <= b.Row {
			rows = append(rows, nil)
		}
		fill := 0
		if b.Visible {
			fill = int(b.Scale*cellWidth + 0.5)
		}
		rows[b.Row] = append(rows[b.Row], strings.Repeat("█", fill)+strings.Repeat("·", cellWidth-fill))
	}
	elapsed := time.Since(r.start)
	for i, cells := range rows {
		label := "       "
		if i == 0 {
			label = fmt.Sprintf("%5dms", elapsed.Milliseconds())
		}
		fmt.Fprintf(r.w, "%s %s\n", faint.Sprint(label), strings.Join(cells, " "))
	}
}

// menuScrollY is where the page is scrolled to when the menu opens.
const menuScrollY = 480

func playTransition(ctx context.Context, w io.Writer, opts playOptions) error {
	from, to := opts.From, opts.To
	overlay := transition.NewOverlay(transition.DefaultRows, transition.DefaultCols)
	renderer := &termRenderer{w: w, every: opts.Every, start: time.Now()}
	anim := transition.NewAnimator(overlay, transition.WithRenderer(renderer))

	revealed := make(chan error, 1)
	watcher := transition.NewWatcher(overlay, anim, transition.OnReveal(func(path string, err error) {
		revealed <- err
	}))
	defer watcher.Stop()

	awaitReveal := func(path string) error {
		if navigation.IsHome(path) {
			return nil
		}
		select {
		case err := <-revealed:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	cyan.Fprintf(w, "on %s\n", from)
	watcher.Observe(from)
	if err := awaitReveal(from); err != nil {
		return err
	}

	nav := navigation.NavigatorFunc(func(ctx context.Context, path string) error {
		cyan.Fprintf(w, "navigate %s\n", path)
		watcher.Observe(navigation.Canonical(path))
		return nil
	})
	ic := navigation.NewInterceptor(anim, nav, watcher.Current)

	intent, err := navigation.NewIntent(to, "")
	if err != nil {
		return err
	}
	same := navigation.Canonical(intent.Target) == navigation.Canonical(from)
	if !same {
		yellow.Fprintf(w, "cover\n")
	}
	if opts.Menu {
		err = followFromMenu(ctx, w, ic, intent)
	} else {
		err = ic.Click(ctx, intent)
	}
	if err != nil {
		return err
	}
	if same {
		green.Fprintf(w, "already on %s, no transition\n", from)
		return nil
	}
	if !navigation.IsHome(intent.Target) {
		yellow.Fprintf(w, "reveal after %s\n", watcher.RevealDelay())
	}
	if err := awaitReveal(intent.Target); err != nil {
		return err
	}
	renderer.mu.Lock()
	renderer.draw(overlay.Snapshot())
	renderer.mu.Unlock()
	green.Fprintf(w, "done\n")
	return nil
}

// followFromMenu opens the navigation dialog over a scrolled page and
// follows the link from inside it.
func followFromMenu(ctx context.Context, w io.Writer, c scrolllock.Clicker, intent navigation.Intent) error {
	doc := scrolllock.NewDocument()
	doc.ScrollTo(menuScrollY)
	dialog := scrolllock.NewDialog(doc, scrolllock.OnClose(func(r scrolllock.CloseReason) {
		faint.Fprintf(w, "menu closed (%s), scroll restored to %d\n", r, doc.ScrollY())
	}))

	dialog.Open()
	faint.Fprintf(w, "menu open at scroll %d, body %s\n", menuScrollY, doc.Body().Position)
	return dialog.Navigate(ctx, c, intent)
}

func init() {
	transitionCmd.Flags().StringVar(&transitionOpts.From, "from", navigation.HomePath, "page the transition starts on")
	transitionCmd.Flags().IntVar(&transitionOpts.Every, "every", 6, "draw every nth frame")
	transitionCmd.Flags().BoolVar(&transitionOpts.Menu, "menu", false, "follow the link from the navigation menu")
	rootCmd.AddCommand(transitionCmd)
}
