// Package extraction owns one user's extraction cycle: OCR of a submitted
// image, fan-out of the OCR text to every rewrite mode, and the per-mode
// result/failure state the UI renders.
//
// State lives in a single Snapshot replaced on every transition:
//
//	Idle -> Extracting -> ExtractFailed
//	                   -> ExtractedBase -> RewritingAll -> AllSettled
//
// Each submission gets a new, strictly increasing batch id. Calls from a
// superseded batch are not cancelled; their outcomes are dropped when the batch
// id no longer matches.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/imaging"
	"github.com/joseph-ayodele/free-ocr/internal/ocr"
	"github.com/joseph-ayodele/free-ocr/internal/rewrite"
)

var (
	// ErrSuperseded is returned when a newer submission replaced the batch before it settled.
	ErrSuperseded = errors.New("extraction superseded by a newer submission")
	// ErrNoText is returned when OCR succeeded but found nothing to rewrite.
	ErrNoText = errors.New("no text found in image")
)

// Listener observes every snapshot transition. Listeners run synchronously and
// in transition order; they must not call Session methods that mutate state.
type Listener func(Snapshot)

// Session is the orchestrator for one user. It is safe for concurrent use.
type Session struct {
	recognizer ocr.Recognizer
	rewriter   rewrite.Rewriter
	logger     *slog.Logger

	concurrency  int
	maxImageSide int
	modes        []constants.Mode
	now          func() time.Time
	listeners    []Listener

	mu        sync.Mutex
	notifyMu  sync.Mutex
	current   Snapshot
	lastBatch uint64
}

type Option func(*Session)

// WithConcurrency caps rewrite calls in flight per batch.
func WithConcurrency(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxImageSide bounds images before OCR; 0 disables resizing.
func WithMaxImageSide(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.maxImageSide = n
		}
	}
}

// WithModes overrides which modes are fanned out (defaults to every rewrite mode).
func WithModes(modes ...constants.Mode) Option {
	return func(s *Session) {
		if len(modes) > 0 {
			s.modes = append([]constants.Mode(nil), modes...)
		}
	}
}

func WithListener(l Listener) Option {
	return func(s *Session) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSession(recognizer ocr.Recognizer, rewriter rewrite.Rewriter, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		recognizer:   recognizer,
		rewriter:     rewriter,
		logger:       logger,
		maxImageSide: 2048,
		modes:        constants.RewriteModes(),
		now:          time.Now,
		current:      idleSnapshot(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Extract runs a full cycle for image and returns the snapshot it settled in.
// OCR failures settle the batch in ExtractFailed and are returned; rewrite
// failures only populate the failure set. If a newer submission started while
// this one was in flight, ErrSuperseded is returned with the newer snapshot.
func (s *Session) Extract(ctx context.Context, image []byte) (Snapshot, error) {
	batch := s.begin()
	ctx = common.WithBatchID(ctx, batch)
	log := common.LoggerFrom(ctx, s.logger)
	log.Info("extraction.start", "image_bytes", len(image))

	prepared, err := imaging.Prepare(image, s.maxImageSide)
	if err != nil {
		return s.failExtraction(ctx, batch, err)
	}
	if prepared.Resized {
		log.Info("extraction.image_resized", "width", prepared.Width, "height", prepared.Height)
	}

	res, err := s.recognizer.Recognize(ctx, prepared.Data)
	if err != nil {
		return s.failExtraction(ctx, batch, err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return s.failExtraction(ctx, batch, common.NewAppError("NO_TEXT", ErrNoText.Error(), errors.Join(ErrNoText, common.ErrValidation)))
	}

	if _, ok := s.transition(batch, func(cur *Snapshot) {
		cur.Phase = constants.PhaseExtractedBase
		cur.Results[constants.PrimaryMode] = res.Text
		cur.OCRMethod = res.Method
	}); !ok {
		return s.superseded(log)
	}
	if _, ok := s.transition(batch, func(cur *Snapshot) {
		cur.Phase = constants.PhaseRewritingAll
	}); !ok {
		return s.superseded(log)
	}

	results, failed := RewriteAll(ctx, s.rewriter, res.Text, s.modes, s.concurrency, s.logger)

	snap, ok := s.transition(batch, func(cur *Snapshot) {
		for m, text := range results {
			cur.Results[m] = text
		}
		for m := range failed {
			cur.Failed[m] = struct{}{}
		}
		cur.Phase = constants.PhaseAllSettled
		cur.SettledAt = s.now()
	})
	if !ok {
		return s.superseded(log)
	}
	log.Info("extraction.settled", "failed", len(failed), "elapsed_ms", snap.SettledAt.Sub(snap.StartedAt).Milliseconds())
	return snap, nil
}

// Select switches the displayed mode. Only modes with a result are selectable;
// pending or failed modes are refused and the selection stays unchanged.
func (s *Session) Select(mode constants.Mode) (Snapshot, error) {
	if !mode.Valid() {
		return s.Snapshot(), common.InvalidInputf("invalid mode %q", string(mode))
	}
	var selErr error
	s.mu.Lock()
	cur := s.current
	switch status := cur.Status(mode); status {
	case StatusReady:
		next := cur.clone()
		next.Selected = mode
		s.publishLocked(next)
		return next.clone(), nil
	case StatusFailed:
		selErr = common.NewAppError("MODE_UNAVAILABLE", fmt.Sprintf("mode %s failed for this extraction", mode), common.ErrConflict)
	default:
		selErr = common.NewAppError("MODE_UNAVAILABLE", fmt.Sprintf("mode %s is %s", mode, status), common.ErrConflict)
	}
	snap := cur.clone()
	s.mu.Unlock()
	return snap, selErr
}

// begin starts a new batch: results and failures are cleared before any
// network call for the new image can resolve.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	s.lastBatch++
	next := idleSnapshot()
	next.Batch = s.lastBatch
	next.Phase = constants.PhaseExtracting
	next.StartedAt = s.now()
	s.publishLocked(next)
	return next.Batch
}

func (s *Session) failExtraction(ctx context.Context, batch uint64, err error) (Snapshot, error) {
	log := common.LoggerFrom(ctx, s.logger)
	msg := common.PublicMessage(err)
	snap, ok := s.transition(batch, func(cur *Snapshot) {
		cur.Phase = constants.PhaseExtractFailed
		cur.Err = msg
		cur.SettledAt = s.now()
	})
	if !ok {
		log.Info("extraction.stale_failure_dropped", "error", err)
		return s.superseded(log)
	}
	log.Error("extraction.failed", "error", err)
	return snap, err
}

func (s *Session) superseded(log *slog.Logger) (Snapshot, error) {
	log.Info("extraction.superseded")
	return s.Snapshot(), ErrSuperseded
}

// transition applies mutate to a copy of the current snapshot if batch is still
// the active one. It returns the installed snapshot and whether it was applied.
func (s *Session) transition(batch uint64, mutate func(cur *Snapshot)) (Snapshot, bool) {
	s.mu.Lock()
	if s.current.Batch != batch {
		s.mu.Unlock()
		return Snapshot{}, false
	}
	next := s.current.clone()
	mutate(&next)
	out := next.clone()
	s.publishLocked(next)
	return out, true
}

// publishLocked installs next and notifies listeners in order. It must be
// called with s.mu held and releases it.
func (s *Session) publishLocked(next Snapshot) {
	s.current = next
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	snap := next.clone()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, l := range s.listeners {
		l(snap)
	}
}
