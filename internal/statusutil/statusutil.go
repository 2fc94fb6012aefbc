package statusutil

import (
	"strings"
	"time"

	"github.com/HunterLewis000/newspaper-app/internal/model"
)

// Stages is the fixed editorial progression, in display order.
var Stages = []model.Status{
	model.StatusNotStarted,
	model.StatusInProgress,
	model.StatusNeedsEdit,
	model.StatusEdited,
	model.StatusPublished,
}

// StageIndex returns the position of s in Stages, or -1.
func StageIndex(s model.Status) int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

func Valid(s model.Status) bool {
	return StageIndex(s) >= 0
}

func IsPublished(s model.Status) bool {
	return s == model.StatusPublished
}

// CurrentStatus is the status of the last inserted history entry. The server's
// notion of "current" is most-recent insert, which can disagree with
// most-recent timestamp under clock skew; we must not sort here.
func CurrentStatus(history []model.StatusHistoryEntry) (model.Status, bool) {
	if len(history) == 0 {
		return "", false
	}
	return history[len(history)-1].Status, true
}

// CurrentStageIndex returns StageIndex(CurrentStatus(history)), or -1 for an
// empty history.
func CurrentStageIndex(history []model.StatusHistoryEntry) int {
	cur, ok := CurrentStatus(history)
	if !ok {
		return -1
	}
	return StageIndex(cur)
}

// IsRegression reports whether moving to next would walk the progression
// backwards. The bound is strict: re-selecting the current stage is not a
// regression and must not prompt.
func IsRegression(history []model.StatusHistoryEntry, next model.Status) bool {
	return CurrentStageIndex(history) > StageIndex(next)
}

// StageState is the derived display state of one timeline stage.
type StageState struct {
	Status model.Status
	// Entry is the latest (by timestamp) history entry carrying this status,
	// nil when the stage was never visited.
	Entry *model.StatusHistoryEntry
	// Completed: some history entry carries this status.
	Completed bool
	// Skipped: never visited, but strictly between the start and the current
	// stage, so it was jumped over. Rendered like completed.
	Skipped bool
	// Current: this stage is the last inserted entry's status.
	Current bool
	// PublishedTint: the whole article is Published and this stage is lit.
	PublishedTint bool
}

// ClassifyStages derives the five-stage timeline from a raw history list.
// The list is taken as-inserted; only the per-stage Entry selection compares
// timestamps (latest visit wins for display metadata).
func ClassifyStages(history []model.StatusHistoryEntry) []StageState {
	latest := map[model.Status]*model.StatusHistoryEntry{}
	for i := range history {
		h := &history[i]
		prev, ok := latest[h.Status]
		if !ok || ParseUTC(h.Timestamp).After(ParseUTC(prev.Timestamp)) {
			latest[h.Status] = h
		}
	}

	curIdx := CurrentStageIndex(history)
	cur, _ := CurrentStatus(history)
	published := cur == model.StatusPublished

	out := make([]StageState, len(Stages))
	for i, st := range Stages {
		entry := latest[st]
		completed := entry != nil
		skipped := !completed && i > 0 && i < curIdx
		lit := completed || skipped
		out[i] = StageState{
			Status:        st,
			Entry:         entry,
			Completed:     completed,
			Skipped:       skipped,
			Current:       completed && cur == st,
			PublishedTint: published && lit,
		}
	}
	return out
}

// ParseUTC parses a server timestamp, normalizing to an explicit UTC marker
// first. Server timestamps may arrive without a zone suffix; parsing them
// naked would re-interpret them in the local zone and double-convert.
func ParseUTC(ts string) time.Time {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}
	}
	// A string that already carries a zone (Z or a ±hh:mm offset, including
	// negative ones) must not get the marker appended.
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC()
	}
	if !strings.HasSuffix(ts, "Z") && !hasZoneOffset(ts) {
		ts += "Z"
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05.999999Z",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, ts); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// hasZoneOffset reports whether ts ends in a ±hh:mm numeric offset. The
// date part contains '-' too, so only the tail is examined.
func hasZoneOffset(ts string) bool {
	if len(ts) < 6 {
		return false
	}
	tail := ts[len(ts)-6:]
	if tail[0] != '+' && tail[0] != '-' {
		return false
	}
	if tail[3] != ':' {
		return false
	}
	for _, i := range []int{1, 2, 4, 5} {
		if tail[i] < '0' || tail[i] > '9' {
			return false
		}
	}
	return true
}

// FormatTimestamp renders a history timestamp for display, e.g.
// "Mar 4, 2026 1:05 PM".
func FormatTimestamp(ts string) string {
	t := ParseUTC(ts)
	if t.IsZero() {
		return ts
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}
