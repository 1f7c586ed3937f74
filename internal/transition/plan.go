package transition

import "time"

// TweenPlan is a Tween in the units the browser animation library expects.
type TweenPlan struct {
	Duration float64   `json:"duration"`
	Each     float64   `json:"each"`
	Ease     string    `json:"ease"`
	Total    float64   `json:"total"`
	Delays   []float64 `json:"delays"`
}

// Plan is the choreography shipped to the browser. The page script only
// replays it; every timing is decided here.
type Plan struct {
	Rows          int       `json:"rows"`
	Cols          int       `json:"cols"`
	HomePath      string    `json:"homePath"`
	RevealDelayMS int64     `json:"revealDelayMs"`
	Cover         TweenPlan `json:"cover"`
	Reveal        TweenPlan `json:"reveal"`
}

// NewPlan describes the animator and watcher configuration for the browser.
func NewPlan(a *Animator, w *Watcher) Plan {
	rows, cols := a.overlay.Dims()
	return Plan{
		Rows:          rows,
		Cols:          cols,
		HomePath:      w.HomePath(),
		RevealDelayMS: w.RevealDelay().Milliseconds(),
		Cover:         tweenPlan(a.cover, rows, cols),
		Reveal:        tweenPlan(a.reveal, rows, cols),
	}
}

func tweenPlan(tw Tween, rows, cols int) TweenPlan {
	delays := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			delays = append(delays, seconds(tw.Delay(c)))
		}
	}
	return TweenPlan{
		Duration: seconds(tw.Duration),
		Each:     seconds(tw.Each),
		Ease:     tw.Ease.Name,
		Total:    seconds(tw.Total(cols)),
		Delays:   delays,
	}
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}
