// Package llm defines the language-model collaborator contracts used by the
// word import pipeline and the exam orchestrator. Implementations live in
// internal/platform/llm; callers depend only on these interfaces.
package llm

import (
	"context"
	"errors"
)

// Sentinel errors for classifying provider failures. Callers use errors.Is
// to decide between retrying, failing the task, or degrading gracefully.
var (
	// ErrAuthFailed indicates the provider rejected our credentials.
	// Not retryable.
	ErrAuthFailed = errors.New("llm authentication failed")

	// ErrRateLimited indicates the provider throttled the request.
	// Retryable after a delay.
	ErrRateLimited = errors.New("llm rate limit exceeded")

	// ErrUnavailable indicates a transient provider or network failure.
	// Retryable.
	ErrUnavailable = errors.New("llm service unavailable")

	// ErrInvalidResponse indicates the provider answered but the payload
	// could not be parsed into the expected shape.
	ErrInvalidResponse = errors.New("llm returned an invalid response")

	// ErrEmptyInput indicates the caller passed nothing to work with.
	ErrEmptyInput = errors.New("llm request input is empty")
)

// Translation is the dictionary payload produced for one imported word.
type Translation struct {
	Word         string   `json:"word"`
	Meaning      string   `json:"meaning"`
	Phonetic     string   `json:"phonetic"`
	PartOfSpeech string   `json:"part_of_speech"`
	Sentences    []string `json:"sentences"`
}

// ExamSentence is one generated translation-exam sentence together with the
// candidate words it is meant to exercise.
type ExamSentence struct {
	Sentence      string   `json:"sentence"`
	WordsInvolved []string `json:"words_involved"`
}

// GradeResult is the judgment for one submitted translation answer.
type GradeResult struct {
	SentenceID string `json:"sentence_id"`
	Correct    bool   `json:"correct"`
	Feedback   string `json:"feedback"`
}

// Translator produces dictionary content for words being imported.
type Translator interface {
	// TranslateWords returns one Translation per input word. Words the
	// model could not translate are omitted from the result.
	TranslateWords(ctx context.Context, words []string) ([]Translation, error)
}

// ExamGenerator produces translation-exam sentences from candidate words.
type ExamGenerator interface {
	// GenerateExamSentences asks the model for sentenceCount sentences that
	// together cover as many of the candidate words as possible.
	GenerateExamSentences(ctx context.Context, words []string, sentenceCount int) ([]ExamSentence, error)
}

// Grader judges submitted translation answers.
type Grader interface {
	// GradeTranslation returns one GradeResult per submitted answer, keyed
	// by sentence ID. Answers the model failed to judge are omitted.
	GradeTranslation(ctx context.Context, submissions []TranslationSubmission) ([]GradeResult, error)
}

// TranslationSubmission pairs a generated sentence with the user's answer
// for grading. RequiredWords are the surface forms of the vocabulary the
// sentence exercises; a correct answer must convey all of them.
type TranslationSubmission struct {
	SentenceID    string   `json:"sentence_id"`
	Sentence      string   `json:"sentence"`
	Answer        string   `json:"answer"`
	RequiredWords []string `json:"required_words"`
}

// Service bundles the three collaborator roles a provider implements.
type Service interface {
	Translator
	ExamGenerator
	Grader
}
