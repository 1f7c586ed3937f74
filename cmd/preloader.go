package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/BernardRegaspi/portfolio/internal/navigation"
	"github.com/BernardRegaspi/portfolio/internal/preloader"
	"github.com/BernardRegaspi/portfolio/internal/scrolllock"
	"github.com/BernardRegaspi/portfolio/internal/visitstore"
)

var defaultVisit = []string{"/", "/graphic-design", "/", "reload"}

var preloaderCmd = &cobra.Command{
	Use:   "preloader [step...]",
	Short: "Walk one browser session through the home preloader",
	Long: `Each step is a page path visited through the site's own links, or
"reload" to reload the current page. Without steps the session is
` + fmt.Sprint(defaultVisit) + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = defaultVisit
		}
		_, err := walkSession(cmd.Context(), cmd.OutOrStdout(), args)
		return err
	},
}

// walkSession replays the steps against one in-memory session and reports
// the variant of every home load.
func walkSession(ctx context.Context, w io.Writer, steps []string) ([]preloader.Variant, error) {
	store := visitstore.NewMemory().Scope("cli")
	var variants []preloader.Variant
	current := ""

	for _, step := range steps {
		if step == "reload" {
			if current == "" {
				return variants, fmt.Errorf("reload before any page was loaded")
			}
			yellow.Fprintf(w, "reload %s\n", current)
			if err := preloader.New(store).Unload(ctx, current); err != nil {
				return variants, err
			}
		} else {
			current = navigation.Canonical(step)
			cyan.Fprintf(w, "visit %s\n", current)
		}

		if !navigation.IsHome(current) {
			continue
		}
		v, err := loadHome(ctx, w, store)
		if err != nil {
			return variants, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// loadHome mounts the home page: the preloader holds the scroll lock until it completes.
func loadHome(ctx context.Context, w io.Writer, store preloader.Storage) (preloader.Variant, error) {
	doc := scrolllock.NewDocument()
	lock := scrolllock.NewOverflowLock(doc)
	lock.Acquire()

	m := preloader.New(store,
		preloader.WithScrollLock(lock),
		preloader.WithOnHide(func() { faint.Fprintf(w, "  preloader hidden\n") }),
	)
	v, err := m.Start(ctx)
	if err != nil {
		return v, err
	}
	if v == preloader.VariantShort {
		fmt.Fprintf(w, "  %s preloader (%s visible, %s fade), scrollable=%t\n",
			v, preloader.ShortVisible, preloader.ShortFade, doc.Scrollable())
	} else {
		fmt.Fprintf(w, "  %s preloader, scrollable=%t\n", v, doc.Scrollable())
	}

	if err := m.Complete(ctx); err != nil {
		return v, err
	}
	green.Fprintf(w, "  done, scrollable=%t\n", doc.Scrollable())
	return v, nil
}

func init() {
	rootCmd.AddCommand(preloaderCmd)
}
