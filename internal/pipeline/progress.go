package pipeline

import "github.com/0xKimutai/IDSnap/constants"

// Event is emitted synchronously at each pipeline stage boundary.
type Event struct {
	Stage    constants.Stage
	Progress float64 // in [0,1], non-decreasing within one invocation
}

// ProgressFunc receives stage events. May be nil.
type ProgressFunc func(Event)

// progressEmitter enforces the non-decreasing progress guarantee regardless
// of which stages actually run.
type progressEmitter struct {
	fn   ProgressFunc
	last float64
}

func (e *progressEmitter) emit(stage constants.Stage, progress float64) {
	if progress < e.last {
		progress = e.last
	}
	if progress > 1 {
		progress = 1
	}
	e.last = progress
	if e.fn != nil {
		e.fn(Event{Stage: stage, Progress: progress})
	}
}
