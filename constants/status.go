package constants

// Phase is the state of one extraction cycle.
type Phase string

// Stable values (these exact strings go over the wire).
const (
	PhaseIdle          Phase = "IDLE"
	PhaseExtracting    Phase = "EXTRACTING"     // OCR call in flight
	PhaseExtractFailed Phase = "EXTRACT_FAILED" // terminal for this image
	PhaseExtractedBase Phase = "EXTRACTED_BASE" // OCR text available, rewrites not started
	PhaseRewritingAll  Phase = "REWRITING_ALL"  // fan-out in flight
	PhaseAllSettled    Phase = "ALL_SETTLED"    // every rewrite succeeded or failed
)

// Terminal reports whether no further transitions happen for the current batch.
func (p Phase) Terminal() bool {
	return p == PhaseExtractFailed || p == PhaseAllSettled
}
