// Package transition implements the block overlay that covers and reveals
// the viewport around page navigation.
package transition

import "sync"

const (
	DefaultRows = 2
	DefaultCols = 5
)

// Block is a single cell of the overlay grid.
type Block struct {
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Visible bool    `json:"visible"`
	Scale   float64 `json:"scale"`
}

// State is the uniform visibility/scale of every block.
type State struct {
	Visible bool    `json:"visible"`
	Scale   float64 `json:"scale"`
}

var (
	Covered = State{Visible: true, Scale: 1}
	Hidden  = State{Visible: false, Scale: 0}
)

// Overlay owns the block grid. Blocks are stored row-major.
// An overlay with no blocks behaves as if it were not mounted.
type Overlay struct {
	mu     sync.RWMutex
	rows   int
	cols   int
	blocks []Block
}

// NewOverlay mounts a rows x cols grid in the hidden state.
func NewOverlay(rows, cols int) *Overlay {
	o := &Overlay{}
	o.mount(rows, cols)
	return o
}

func (o *Overlay) mount(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	o.rows, o.cols = rows, cols
	o.blocks = make([]Block, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			o.blocks = append(o.blocks, Block{Row: r, Col: c})
		}
	}
}

// Unmount drops every block.
func (o *Overlay) Unmount() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mount(0, 0)
}

// Len is the number of mounted blocks.
func (o *Overlay) Len() int {
	if o == nil {
		return 0
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.blocks)
}

// Dims returns the grid dimensions.
func (o *Overlay) Dims() (rows, cols int) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rows, o.cols
}

// Snapshot returns a copy of the blocks.
func (o *Overlay) Snapshot() []Block {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Block, len(o.blocks))
	copy(out, o.blocks)
	return out
}

// State reports the uniform state of the grid; ok is false when blocks differ
// (mid-animation) or nothing is mounted.
func (o *Overlay) State() (s State, ok bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if len(o.blocks) == 0 {
		return State{}, false
	}
	s = State{Visible: o.blocks[0].Visible, Scale: o.blocks[0].Scale}
	for _, b := range o.blocks[1:] {
		if b.Visible != s.Visible || b.Scale != s.Scale {
			return State{}, false
		}
	}
	return s, true
}

// ForceCovered sets every block visible at full scale without animating.
func (o *Overlay) ForceCovered() { o.Set(Covered) }

// ForceHidden sets every block hidden at zero scale without animating.
func (o *Overlay) ForceHidden() { o.Set(Hidden) }

// Set applies s to every block.
func (o *Overlay) Set(s State) {
	o.update(func(b *Block) {
		b.Visible = s.Visible
		b.Scale = s.Scale
	})
}

func (o *Overlay) update(fn func(b *Block)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.blocks {
		fn(&o.blocks[i])
	}
}
