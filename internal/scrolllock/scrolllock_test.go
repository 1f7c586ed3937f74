package scrolllock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BernardRegaspi/portfolio/internal/navigation"
)

func TestLockAcquireRelease(t *testing.T) {
	doc := NewDocument()
	doc.ScrollTo(480)
	l := NewLock(doc)

	l.Acquire()
	assert.True(t, l.Held())
	assert.False(t, doc.Scrollable())
	assert.Equal(t, BodyStyle{Position: "fixed", Top: "-480px", Width: "100%", Overflow: "hidden"}, doc.Body())
	assert.Equal(t, 0, doc.ScrollY())

	doc.ScrollTo(10)
	assert.Equal(t, 0, doc.ScrollY(), "no scrolling while locked")

	l.Acquire() // idempotent: the saved offset is not overwritten
	l.Release()
	assert.False(t, l.Held())
	assert.True(t, doc.Scrollable())
	assert.Equal(t, BodyStyle{}, doc.Body())
	assert.Equal(t, 480, doc.ScrollY())

	l.Release()
	assert.Equal(t, 480, doc.ScrollY())
}

func TestOverflowLock(t *testing.T) {
	doc := NewDocument()
	l := NewOverflowLock(doc)
	l.Acquire()
	assert.Equal(t, "hidden", doc.Body().Overflow)
	assert.False(t, doc.Scrollable())
	l.Release()
	l.Release()
	assert.True(t, doc.Scrollable())
	assert.False(t, l.Held())
}

func TestDialogExitPathsRestoreScroll(t *testing.T) {
	exits := map[string]func(t *testing.T, d *Dialog){
		"close button": func(t *testing.T, d *Dialog) { d.Toggle() },
		"escape key":   func(t *testing.T, d *Dialog) { assert.True(t, d.HandleKey("Escape")) },
		"backdrop":     func(t *testing.T, d *Dialog) { d.ClickBackdrop() },
		"unmount":      func(t *testing.T, d *Dialog) { d.Unmount() },
	}

	for name, exit := range exits {
		t.Run(name, func(t *testing.T) {
			doc := NewDocument()
			doc.ScrollTo(1234)
			before := doc.Body()

			var reasons []CloseReason
			d := NewDialog(doc, OnClose(func(r CloseReason) { reasons = append(reasons, r) }))
			d.Toggle()
			require.True(t, d.IsOpen())
			require.False(t, doc.Scrollable())

			exit(t, d)

			assert.False(t, d.IsOpen())
			assert.True(t, doc.Scrollable())
			assert.Equal(t, before, doc.Body())
			assert.Equal(t, 1234, doc.ScrollY())
			assert.Len(t, reasons, 1)
		})
	}
}

func TestDialogIgnoresOtherKeys(t *testing.T) {
	d := NewDialog(NewDocument())
	assert.False(t, d.HandleKey("Escape"), "closed dialog consumes nothing")
	d.Open()
	assert.False(t, d.HandleKey("Enter"))
	assert.True(t, d.IsOpen())
}

type clickRecorder struct {
	intents []navigation.Intent
	open    bool
	d       *Dialog
}

func (c *clickRecorder) Click(_ context.Context, intent navigation.Intent) error {
	c.open = c.d.IsOpen()
	c.intents = append(c.intents, intent)
	return nil
}

func TestDialogNavigateClosesFirst(t *testing.T) {
	doc := NewDocument()
	doc.ScrollTo(90)
	d := NewDialog(doc, WithCloseDelay(0))
	c := &clickRecorder{d: d}

	d.Open()
	require.NoError(t, d.Navigate(context.Background(), c, navigation.Intent{Target: "/graphic-design"}))

	assert.False(t, c.open, "menu closed before the transition starts")
	assert.Equal(t, []navigation.Intent{{Target: "/graphic-design"}}, c.intents)
	assert.Equal(t, 90, doc.ScrollY())
}

func TestDialogNavigateCancelledDuringCloseDelay(t *testing.T) {
	d := NewDialog(NewDocument())
	c := &clickRecorder{d: d}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Open()
	err := d.Navigate(ctx, c, navigation.Intent{Target: "/"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.intents)
	assert.False(t, d.IsOpen())
}

func TestCloseReasonString(t *testing.T) {
	assert.Equal(t, "escape", Escape.String())
	assert.Equal(t, "unknown", CloseReason(42).String())
}
