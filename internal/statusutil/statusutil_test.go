package statusutil

import (
	"testing"

	"github.com/HunterLewis000/newspaper-app/internal/model"
)

func hist(statuses ...model.Status) []model.StatusHistoryEntry {
	out := make([]model.StatusHistoryEntry, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, model.StatusHistoryEntry{Status: s, Timestamp: "2026-03-04 10:00:00", UserName: "desk"})
	}
	return out
}

func TestCurrentStatus_LastInsertWins(t *testing.T) {
	// Timestamps deliberately out of order: the last *inserted* entry is
	// current, even when an earlier entry carries a later timestamp.
	h := []model.StatusHistoryEntry{
		{Status: model.StatusInProgress, Timestamp: "2026-03-04 12:00:00"},
		{Status: model.StatusNotStarted, Timestamp: "2026-03-04 09:00:00"},
	}
	cur, ok := CurrentStatus(h)
	if !ok {
		t.Fatalf("expected a current status")
	}
	if cur != model.StatusNotStarted {
		t.Fatalf("expected last-inserted entry to be current; got %q", cur)
	}

	if _, ok := CurrentStatus(nil); ok {
		t.Fatalf("empty history must have no current status")
	}
}

func TestIsRegression_StrictBoundary(t *testing.T) {
	h := hist(model.StatusNotStarted, model.StatusInProgress)

	if !IsRegression(h, model.StatusNotStarted) {
		t.Fatalf("In Progress -> Not Started must be a regression")
	}
	// Equal index: re-selecting the current stage never prompts.
	if IsRegression(h, model.StatusInProgress) {
		t.Fatalf("re-selecting the current stage is not a regression")
	}
	if IsRegression(h, model.StatusPublished) {
		t.Fatalf("forward move is not a regression")
	}
	if IsRegression(nil, model.StatusNotStarted) {
		t.Fatalf("empty history cannot regress")
	}
}

func TestClassifyStages_SkippedAndCurrent(t *testing.T) {
	// Jump straight from Not Started to Edited: In Progress and Needs Edit
	// were never visited and must render skipped (visually completed).
	h := hist(model.StatusNotStarted, model.StatusEdited)
	st := ClassifyStages(h)
	if len(st) != len(Stages) {
		t.Fatalf("expected %d stages; got %d", len(Stages), len(st))
	}

	if !st[0].Completed || st[0].Skipped || st[0].Current {
		t.Fatalf("Not Started should be completed, not skipped/current: %+v", st[0])
	}
	for _, i := range []int{1, 2} {
		if st[i].Completed || !st[i].Skipped {
			t.Fatalf("stage %d should be skipped: %+v", i, st[i])
		}
	}
	if !st[3].Current || !st[3].Completed {
		t.Fatalf("Edited should be current+completed: %+v", st[3])
	}
	if st[4].Completed || st[4].Skipped || st[4].Current {
		t.Fatalf("Published should be untouched: %+v", st[4])
	}
}

func TestClassifyStages_PublishedTint(t *testing.T) {
	h := hist(model.StatusNotStarted, model.StatusInProgress, model.StatusPublished)
	st := ClassifyStages(h)
	for i, s := range st {
		lit := s.Completed || s.Skipped
		if lit && !s.PublishedTint {
			t.Fatalf("stage %d lit but missing published tint: %+v", i, s)
		}
		if !lit && s.PublishedTint {
			t.Fatalf("stage %d unlit but tinted: %+v", i, s)
		}
	}
	if !st[4].Current {
		t.Fatalf("Published should be the current stage")
	}
}

func TestClassifyStages_RevertLeavesLaterStagesCompletedNotCurrent(t *testing.T) {
	h := hist(model.StatusNotStarted, model.StatusEdited, model.StatusInProgress)
	st := ClassifyStages(h)
	if !st[1].Current {
		t.Fatalf("In Progress should be current after revert")
	}
	if !st[3].Completed || st[3].Current {
		t.Fatalf("Edited keeps its visited mark but is not current: %+v", st[3])
	}
	// Needs Edit sits above the current index; never visited, so not skipped.
	if st[2].Skipped {
		t.Fatalf("stage above current index must not be skipped: %+v", st[2])
	}
}

func TestParseUTC_NormalizesNakedTimestamps(t *testing.T) {
	got := ParseUTC("2026-03-04 13:05:00")
	if got.IsZero() {
		t.Fatalf("expected parseable timestamp")
	}
	if got.Hour() != 13 || got.Location().String() != "UTC" {
		t.Fatalf("naked timestamp must be read as UTC; got %v", got)
	}

	// Already-suffixed timestamps parse unchanged.
	z := ParseUTC("2026-03-04T13:05:00Z")
	if !z.Equal(got) {
		t.Fatalf("suffixed and naked forms should agree: %v vs %v", z, got)
	}
}

func TestParseUTC_KeepsExplicitOffsets(t *testing.T) {
	// A negative offset must not get the UTC marker appended on top.
	got := ParseUTC("2026-03-04T13:05:00-05:00")
	if got.IsZero() {
		t.Fatalf("offset timestamp failed to parse")
	}
	want := ParseUTC("2026-03-04T18:05:00Z")
	if !got.Equal(want) {
		t.Fatalf("offset not honored: got %v, want %v", got, want)
	}

	plus := ParseUTC("2026-03-04T13:05:00+02:00")
	if !plus.Equal(ParseUTC("2026-03-04T11:05:00Z")) {
		t.Fatalf("positive offset not honored: %v", plus)
	}

	spaced := ParseUTC("2026-03-04 13:05:00-05:00")
	if !spaced.Equal(want) {
		t.Fatalf("space-separated offset form not honored: %v", spaced)
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp("2026-03-04 13:05:00"); got != "Mar 4, 2026 1:05 PM" {
		t.Fatalf("unexpected format: %q", got)
	}
	// Unparseable input falls through verbatim rather than rendering a zero date.
	if got := FormatTimestamp("garbage"); got != "garbage" {
		t.Fatalf("unparseable timestamps pass through; got %q", got)
	}
}

func TestStageIndex(t *testing.T) {
	if StageIndex(model.StatusNotStarted) != 0 || StageIndex(model.StatusPublished) != 4 {
		t.Fatalf("stage order broken")
	}
	if StageIndex("Bogus") != -1 {
		t.Fatalf("unknown status must index -1")
	}
	if Valid("Bogus") || !Valid(model.StatusNeedsEdit) {
		t.Fatalf("Valid misclassifies")
	}
}
