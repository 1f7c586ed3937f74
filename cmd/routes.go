package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/BernardRegaspi/portfolio/internal/content"
	"github.com/BernardRegaspi/portfolio/internal/navigation"
	"github.com/BernardRegaspi/portfolio/internal/transition"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the site's pages and how each one opens",
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := content.Load()
		if err != nil {
			return fmt.Errorf("loading site content: %w", err)
		}
		printRoutes(cmd.OutOrStdout(), site)
		return nil
	},
}

func printRoutes(w io.Writer, site *content.Site) {
	for _, r := range navigation.All() {
		state := green.Sprint("hidden ")
		if transition.InitialState(r.Path, navigation.HomePath).Visible {
			state = yellow.Sprint("covered")
		}
		projects := ""
		if r.Category != "" {
			projects = faint.Sprintf("%d projects", len(site.ProjectsFor(r.Category)))
		}
		fmt.Fprintf(w, "%-24s %s  %-22s %s\n", cyan.Sprint(r.Path), state, r.Title, projects)
	}
	for _, a := range navigation.Aliases() {
		fmt.Fprintf(w, "%-24s %s  %s\n", cyan.Sprint(a.Path), faint.Sprint("301    "), "-> "+a.AliasOf)
	}
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
