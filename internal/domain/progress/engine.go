// Package progress is the single authority for learning item status
// mutation. All transitions through the memorization pipeline
// (new -> pending check -> pending review -> review passed -> mastered)
// happen here; callers never touch item.Status directly.
//
// The functions are pure data mutations: they never fail for business
// reasons. Ownership checks belong to the caller.
package progress

import (
	"time"

	"github.com/wordpath/wordpath-api/internal/domain"
)

// User-facing status labels returned from study submissions.
const (
	MsgKeepGoing     = "keep going"
	MsgPendingCheck  = "pending check"
	MsgPendingReview = "pending review"
	MsgReviewPassed  = "passed review"
	MsgMastered      = "mastered"
	MsgWrongRestart  = "wrong, restart"
	MsgSkipped       = "skipped"
)

// ResetToNew sends an item back to the start of the pipeline after a failure
// or a skip. The fail counter always advances; the study counter advances
// only on the skip path, because ApplyStudyOutcome has already counted the
// submission on the correct/incorrect paths.
func ResetToNew(item *domain.LearningItem, isSkip bool) {
	if isSkip {
		item.StudyCount++
	}

	item.FailCount++
	item.MatchCount = 0
	if item.Status > domain.StatusNew {
		item.Status = domain.StatusNew
	}
	item.UpdatedAt = time.Now().UTC()
}

// ApplyStudyOutcome advances an item after one study submission. Every
// submission counts toward StudyCount exactly once. An incorrect answer
// resets the item; a correct answer moves it one step along the pipeline:
//
//	0 -> 1 on the first match, 1 -> 2 on the second consecutive match,
//	2 -> 3 and 3 -> 4 when those items are studied directly.
//
// The returned label is the fixed user-facing message for the transition.
func ApplyStudyOutcome(item *domain.LearningItem, correct bool, now time.Time) string {
	item.StudyCount++

	if !correct {
		ResetToNew(item, false)
		return MsgWrongRestart
	}

	item.ReviewCount++
	t := now.UTC()
	item.LastReviewTime = &t
	item.UpdatedAt = t

	switch item.Status {
	case domain.StatusNew:
		if item.MatchCount == 0 {
			item.Status = domain.StatusPendingCheck
			item.MatchCount = 1
			return MsgPendingCheck
		}
	case domain.StatusPendingCheck:
		if item.MatchCount == 1 {
			item.Status = domain.StatusPendingReview
			item.MatchCount = 0
			return MsgPendingReview
		}
	case domain.StatusPendingReview:
		item.Status = domain.StatusReviewPassed
		return MsgReviewPassed
	case domain.StatusReviewPassed:
		item.Status = domain.StatusMastered
		return MsgMastered
	}

	return MsgKeepGoing
}

// ApplyExamSuccess advances an item that passed an exam. Immediate and
// random exams promote pending-review items to review-passed; complete
// exams promote review-passed items to mastered. An item whose status
// already moved on is left unchanged, never regressed.
func ApplyExamSuccess(item *domain.LearningItem, mode domain.ExamMode, now time.Time) {
	item.ReviewCount++
	t := now.UTC()
	item.LastReviewTime = &t
	item.UpdatedAt = t

	switch mode {
	case domain.ExamModeImmediate, domain.ExamModeRandom:
		if item.Status == domain.StatusPendingReview {
			item.Status = domain.StatusReviewPassed
		}
	case domain.ExamModeComplete:
		if item.Status == domain.StatusReviewPassed {
			item.Status = domain.StatusMastered
		}
	}
}

// ApplyExamFailure forces an item back to new after a failed exam question.
// Unlike the study path this applies regardless of the item's prior status:
// an exam failure always restarts memorization.
func ApplyExamFailure(item *domain.LearningItem, now time.Time) {
	item.Status = domain.StatusNew
	item.FailCount++
	item.MatchCount = 0
	item.UpdatedAt = now.UTC()
}
