package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BernardRegaspi/portfolio/internal/content"
	"github.com/BernardRegaspi/portfolio/internal/preloader"
)

func init() {
	color.NoColor = true
}

func TestPrintRoutes(t *testing.T) {
	site, err := content.Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	printRoutes(&buf, site)
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "/")
	assert.Contains(t, lines[0], "hidden")
	assert.Contains(t, out, "/graphic-design")
	assert.Contains(t, lines[5], "/virtual-analyst")
	assert.Contains(t, lines[5], "-> /virtual-assistant")
	for _, l := range lines[1:5] {
		assert.Contains(t, l, "covered")
	}
}

func TestPlayTransitionToServicePage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, playTransition(ctx, &buf, playOptions{From: "/", To: "/graphic-design", Every: 10}))
	out := buf.String()

	assert.Contains(t, out, "cover")
	assert.Contains(t, out, "navigate /graphic-design")
	assert.Contains(t, out, "reveal after 200ms")
	assert.True(t, strings.HasSuffix(out, "done\n"))
	// Fully revealed at the end.
	assert.Contains(t, out, "······ ······ ······ ······ ······")
}

func TestPlayTransitionSamePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, playTransition(context.Background(), &buf, playOptions{From: "/", To: "/#about", Every: 1}))

	assert.Contains(t, buf.String(), "already on /")
	assert.NotContains(t, buf.String(), "cover")
}

func TestPlayTransitionFromMenu(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, playTransition(ctx, &buf, playOptions{From: "/", To: "/mobile-development", Every: 30, Menu: true}))
	out := buf.String()

	assert.Contains(t, out, "menu open at scroll 480, body fixed")
	assert.Contains(t, out, "menu closed (navigate), scroll restored to 480")
	// The menu is closed before the cover starts.
	assert.Less(t, strings.Index(out, "menu closed"), strings.Index(out, "navigate /mobile-development"))
	assert.True(t, strings.HasSuffix(out, "done\n"))
}

func TestWalkSession(t *testing.T) {
	var buf bytes.Buffer
	variants, err := walkSession(context.Background(), &buf, defaultVisit)
	require.NoError(t, err)

	assert.Equal(t, []preloader.Variant{preloader.VariantFull, preloader.VariantShort, preloader.VariantFull}, variants)
	out := buf.String()
	assert.Contains(t, out, "full preloader, scrollable=false")
	assert.Contains(t, out, "short preloader (900ms visible, 900ms fade), scrollable=false")
	assert.Equal(t, 3, strings.Count(out, "preloader hidden"))
	assert.Equal(t, 3, strings.Count(out, "done, scrollable=true"))
}

func TestWalkSessionReloadOffHomeKeepsShort(t *testing.T) {
	variants, err := walkSession(context.Background(), io.Discard, []string{"/", "/graphic-design", "reload", "/"})
	require.NoError(t, err)
	assert.Equal(t, []preloader.Variant{preloader.VariantFull, preloader.VariantShort}, variants)

	_, err = walkSession(context.Background(), io.Discard, []string{"reload"})
	assert.Error(t, err)
}
