package extraction

import (
	"maps"
	"time"

	"github.com/joseph-ayodele/free-ocr/constants"
)

// ModeStatus is the per-mode view the UI renders.
type ModeStatus string

const (
	StatusEmpty   ModeStatus = "empty"   // no extraction yet, or extraction failed
	StatusPending ModeStatus = "pending" // waiting for OCR or for its rewrite
	StatusReady   ModeStatus = "ready"
	StatusFailed  ModeStatus = "failed"
)

// Snapshot is an immutable view of one extraction cycle. Values handed out by
// Session never share maps with its internal state.
type Snapshot struct {
	Batch     uint64
	Phase     constants.Phase
	Results   map[constants.Mode]string
	Failed    map[constants.Mode]struct{}
	Selected  constants.Mode
	Err       string
	OCRMethod string
	StartedAt time.Time
	SettledAt time.Time
}

func idleSnapshot() Snapshot {
	return Snapshot{
		Phase:    constants.PhaseIdle,
		Results:  map[constants.Mode]string{},
		Failed:   map[constants.Mode]struct{}{},
		Selected: constants.PrimaryMode,
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Results = maps.Clone(s.Results)
	out.Failed = maps.Clone(s.Failed)
	if out.Results == nil {
		out.Results = map[constants.Mode]string{}
	}
	if out.Failed == nil {
		out.Failed = map[constants.Mode]struct{}{}
	}
	return out
}

// Result returns the text for mode and whether it is populated.
func (s Snapshot) Result(mode constants.Mode) (string, bool) {
	text, ok := s.Results[mode]
	return text, ok
}

// IsFailed reports whether mode is in the failure set.
func (s Snapshot) IsFailed(mode constants.Mode) bool {
	_, ok := s.Failed[mode]
	return ok
}

// FailedModes lists the failure set in display order.
func (s Snapshot) FailedModes() []constants.Mode {
	var out []constants.Mode
	for _, m := range constants.AllModes() {
		if s.IsFailed(m) {
			out = append(out, m)
		}
	}
	return out
}

// Status derives the per-mode state from the phase and the maps.
func (s Snapshot) Status(mode constants.Mode) ModeStatus {
	if s.IsFailed(mode) {
		return StatusFailed
	}
	if _, ok := s.Results[mode]; ok {
		return StatusReady
	}
	switch s.Phase {
	case constants.PhaseExtracting, constants.PhaseExtractedBase, constants.PhaseRewritingAll:
		return StatusPending
	default:
		return StatusEmpty
	}
}

// Selectable reports whether the user may switch to mode.
func (s Snapshot) Selectable(mode constants.Mode) bool {
	return s.Status(mode) == StatusReady
}

// SelectedText is the text of the selected mode, or "" if it is not ready.
func (s Snapshot) SelectedText() string {
	return s.Results[s.Selected]
}
