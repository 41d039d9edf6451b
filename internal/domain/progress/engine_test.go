package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wordpath/wordpath-api/internal/domain"
)

func newItem(t *testing.T, status domain.ItemStatus, matchCount int) *domain.LearningItem {
	t.Helper()
	item, err := domain.NewLearningItem(uuid.New(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	item.Status = status
	item.MatchCount = matchCount
	return item
}

func TestApplyStudyOutcomeTransitions(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	tests := []struct {
		name       string
		status     domain.ItemStatus
		matchCount int
		correct    bool
		wantStatus domain.ItemStatus
		wantMatch  int
		wantMsg    string
	}{
		{
			name:       "first match promotes new to pending check",
			status:     domain.StatusNew,
			correct:    true,
			wantStatus: domain.StatusPendingCheck,
			wantMatch:  1,
			wantMsg:    MsgPendingCheck,
		},
		{
			name:       "second match promotes pending check to pending review",
			status:     domain.StatusPendingCheck,
			matchCount: 1,
			correct:    true,
			wantStatus: domain.StatusPendingReview,
			wantMatch:  0,
			wantMsg:    MsgPendingReview,
		},
		{
			name:       "studying pending review promotes to review passed",
			status:     domain.StatusPendingReview,
			correct:    true,
			wantStatus: domain.StatusReviewPassed,
			wantMatch:  0,
			wantMsg:    MsgReviewPassed,
		},
		{
			name:       "studying review passed promotes to mastered",
			status:     domain.StatusReviewPassed,
			correct:    true,
			wantStatus: domain.StatusMastered,
			wantMatch:  0,
			wantMsg:    MsgMastered,
		},
		{
			name:       "mastered stays mastered",
			status:     domain.StatusMastered,
			correct:    true,
			wantStatus: domain.StatusMastered,
			wantMatch:  0,
			wantMsg:    MsgKeepGoing,
		},
		{
			name:       "incorrect answer resets pending review",
			status:     domain.StatusPendingReview,
			correct:    false,
			wantStatus: domain.StatusNew,
			wantMatch:  0,
			wantMsg:    MsgWrongRestart,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			item := newItem(t, tc.status, tc.matchCount)

			msg := ApplyStudyOutcome(item, tc.correct, now)

			if item.Status != tc.wantStatus {
				t.Errorf("status = %v, want %v", item.Status, tc.wantStatus)
			}
			if item.MatchCount != tc.wantMatch {
				t.Errorf("match count = %d, want %d", item.MatchCount, tc.wantMatch)
			}
			if msg != tc.wantMsg {
				t.Errorf("message = %q, want %q", msg, tc.wantMsg)
			}
			if item.StudyCount != 1 {
				t.Errorf("study count = %d, want exactly 1 per submission", item.StudyCount)
			}
			if !item.Status.Valid() {
				t.Errorf("status %v outside the valid range", item.Status)
			}
		})
	}
}

func TestApplyStudyOutcomeIncorrectCounters(t *testing.T) {
	t.Parallel()
	item := newItem(t, domain.StatusPendingCheck, 1)

	ApplyStudyOutcome(item, false, time.Now())

	if item.FailCount != 1 {
		t.Errorf("fail count = %d, want 1", item.FailCount)
	}
	if item.StudyCount != 1 {
		t.Errorf("study count = %d, want 1 (no double count on failure)", item.StudyCount)
	}
	if item.ReviewCount != 0 {
		t.Errorf("review count = %d, want 0", item.ReviewCount)
	}
	if item.LastReviewTime != nil {
		t.Error("last review time should not be set on a failed submission")
	}
}

func TestResetToNew(t *testing.T) {
	t.Parallel()

	t.Run("skip counts as one study submission", func(t *testing.T) {
		t.Parallel()
		item := newItem(t, domain.StatusPendingReview, 0)

		ResetToNew(item, true)

		if item.Status != domain.StatusNew {
			t.Errorf("status = %v, want new", item.Status)
		}
		if item.StudyCount != 1 {
			t.Errorf("study count = %d, want 1", item.StudyCount)
		}
		if item.FailCount != 1 {
			t.Errorf("fail count = %d, want 1", item.FailCount)
		}
		if item.MatchCount != 0 {
			t.Errorf("match count = %d, want 0", item.MatchCount)
		}
	})

	t.Run("already-new item keeps status zero", func(t *testing.T) {
		t.Parallel()
		item := newItem(t, domain.StatusNew, 0)

		ResetToNew(item, false)

		if item.Status != domain.StatusNew {
			t.Errorf("status = %v, want new", item.Status)
		}
		if item.StudyCount != 0 {
			t.Errorf("study count = %d, want 0 on the non-skip path", item.StudyCount)
		}
	})
}

func TestApplyExamSuccess(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	tests := []struct {
		name       string
		status     domain.ItemStatus
		mode       domain.ExamMode
		wantStatus domain.ItemStatus
	}{
		{"immediate promotes pending review", domain.StatusPendingReview, domain.ExamModeImmediate, domain.StatusReviewPassed},
		{"random promotes pending review", domain.StatusPendingReview, domain.ExamModeRandom, domain.StatusReviewPassed},
		{"complete promotes review passed", domain.StatusReviewPassed, domain.ExamModeComplete, domain.StatusMastered},
		{"immediate leaves review passed alone", domain.StatusReviewPassed, domain.ExamModeImmediate, domain.StatusReviewPassed},
		{"complete leaves pending review alone", domain.StatusPendingReview, domain.ExamModeComplete, domain.StatusPendingReview},
		{"complete leaves mastered alone", domain.StatusMastered, domain.ExamModeComplete, domain.StatusMastered},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			item := newItem(t, tc.status, 0)

			ApplyExamSuccess(item, tc.mode, now)

			if item.Status != tc.wantStatus {
				t.Errorf("status = %v, want %v", item.Status, tc.wantStatus)
			}
			if item.ReviewCount != 1 {
				t.Errorf("review count = %d, want 1", item.ReviewCount)
			}
			if item.LastReviewTime == nil {
				t.Error("last review time should be set")
			}
		})
	}
}

func TestApplyExamFailure(t *testing.T) {
	t.Parallel()

	// An exam failure restarts the item regardless of how far it had come.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, status := range []domain.ItemStatus{
		domain.StatusNew,
		domain.StatusPendingCheck,
		domain.StatusPendingReview,
		domain.StatusReviewPassed,
		domain.StatusMastered,
	} {
		item := newItem(t, status, 1)

		ApplyExamFailure(item, now)

		if item.Status != domain.StatusNew {
			t.Errorf("status after failure from %v = %v, want new", status, item.Status)
		}
		if item.FailCount != 1 {
			t.Errorf("fail count = %d, want 1", item.FailCount)
		}
		if item.MatchCount != 0 {
			t.Errorf("match count = %d, want 0", item.MatchCount)
		}
		if !item.UpdatedAt.Equal(now) {
			t.Errorf("updated at = %v, want the supplied time", item.UpdatedAt)
		}
	}
}
