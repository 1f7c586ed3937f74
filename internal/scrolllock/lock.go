// Package scrolllock freezes page scrolling while a full-screen layer is up
// and guarantees it is restored on every way out.
package scrolllock

import (
	"fmt"
	"sync"
)

// BodyStyle is the subset of body styles the locks touch.
type BodyStyle struct {
	Position string
	Top      string
	Width    string
	Overflow string
}

// Document is the page whose body and scroll offset get locked.
type Document struct {
	mu      sync.Mutex
	body    BodyStyle
	scrollY int
}

func NewDocument() *Document { return &Document{} }

func (d *Document) Body() BodyStyle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.body
}

func (d *Document) ScrollY() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrollY
}

// ScrollTo moves the viewport. It is ignored while the body is not scrollable.
func (d *Document) ScrollTo(y int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !scrollable(d.body) {
		return
	}
	d.scrollY = y
}

// Scrollable reports whether the user can scroll the page.
func (d *Document) Scrollable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return scrollable(d.body)
}

func scrollable(b BodyStyle) bool {
	return b.Position != "fixed" && b.Overflow != "hidden"
}

// pin fixes the body; a fixed body reports no scroll offset.
func (d *Document) pin(b BodyStyle) (prev BodyStyle, y int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, y = d.body, d.scrollY
	d.body = b
	d.scrollY = 0
	return prev, y
}

func (d *Document) swap(b BodyStyle) BodyStyle {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.body
	d.body = b
	return prev
}

// Lock pins the body in place at the current scroll offset.
// Acquire and Release are idempotent.
type Lock struct {
	doc *Document

	mu      sync.Mutex
	held    bool
	saved   BodyStyle
	scrollY int
}

func NewLock(doc *Document) *Lock { return &Lock{doc: doc} }

func (l *Lock) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return
	}
	y := l.doc.ScrollY()
	l.saved, l.scrollY = l.doc.pin(BodyStyle{
		Position: "fixed",
		Top:      fmt.Sprintf("-%dpx", y),
		Width:    "100%",
		Overflow: "hidden",
	})
	l.held = true
}

func (l *Lock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return
	}
	l.doc.swap(l.saved)
	l.doc.ScrollTo(l.scrollY)
	l.held = false
}

func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// OverflowLock only hides overflow; the preloader uses it since the page is
// always at the top while it shows.
type OverflowLock struct {
	doc *Document

	mu    sync.Mutex
	held  bool
	saved BodyStyle
}

func NewOverflowLock(doc *Document) *OverflowLock { return &OverflowLock{doc: doc} }

func (l *OverflowLock) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return
	}
	b := l.doc.Body()
	l.saved = b
	b.Overflow = "hidden"
	l.doc.swap(b)
	l.held = true
}

func (l *OverflowLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return
	}
	b := l.doc.Body()
	b.Overflow = l.saved.Overflow
	l.doc.swap(b)
	l.held = false
}

func (l *OverflowLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}
