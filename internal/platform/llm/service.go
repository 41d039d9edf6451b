// Package llm provides language-model backed implementations of the
// collaborator contracts in internal/llm. A Service wraps one of the
// provider clients (OpenAI-compatible or Gemini) with retry, response
// parsing and a translation cache.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/llm"
)

// textGenerator is the low-level provider contract: one prompt in, one raw
// text completion out. Both SDK clients satisfy it.
type textGenerator interface {
	generate(ctx context.Context, system, prompt string) (string, error)
	name() string
}

// Service implements llm.Service on top of a provider client.
type Service struct {
	gen    textGenerator
	retry  *retrier
	cache  *translationCache
	logger *slog.Logger
}

var _ llm.Service = (*Service)(nil)

type translateResponse struct {
	Translations []llm.Translation `json:"translations"`
}

type generateResponse struct {
	Sentences []llm.ExamSentence `json:"sentences"`
}

type gradeResponse struct {
	Results []llm.GradeResult `json:"results"`
}

// TranslateWords returns dictionary content for the given words, serving
// repeats from the cache and asking the model only for the misses.
func (s *Service) TranslateWords(ctx context.Context, words []string) ([]llm.Translation, error) {
	if len(words) == 0 {
		return nil, llm.ErrEmptyInput
	}

	results := make([]llm.Translation, 0, len(words))
	misses := make([]string, 0, len(words))
	for _, w := range words {
		if t, ok := s.cache.get(domain.NormalizeWord(w)); ok {
			results = append(results, t)
			continue
		}
		misses = append(misses, w)
	}

	s.logger.DebugContext(ctx, "translating words",
		"provider", s.gen.name(),
		"requested", len(words),
		"cache_hits", len(words)-len(misses))

	if len(misses) == 0 {
		return results, nil
	}

	text, err := s.retry.do(ctx, "translate_words", func(ctx context.Context) (string, error) {
		return s.gen.generate(ctx, translateSystem, buildTranslatePrompt(misses))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to translate words: %w", err)
	}

	var parsed translateResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: translate payload: %v", llm.ErrInvalidResponse, err)
	}

	// The model sometimes echoes words with different casing; keying by the
	// normalized form keeps lookups and writes consistent.
	for _, t := range parsed.Translations {
		if t.Word == "" || t.Meaning == "" {
			continue
		}
		s.cache.put(domain.NormalizeWord(t.Word), t)
		results = append(results, t)
	}

	return results, nil
}

// GenerateExamSentences asks the model for sentenceCount exam sentences
// covering the candidate words.
func (s *Service) GenerateExamSentences(ctx context.Context, words []string, sentenceCount int) ([]llm.ExamSentence, error) {
	if len(words) == 0 {
		return nil, llm.ErrEmptyInput
	}
	if sentenceCount < 1 {
		sentenceCount = 1
	}

	text, err := s.retry.do(ctx, "generate_exam_sentences", func(ctx context.Context) (string, error) {
		return s.gen.generate(ctx, generateSystem, buildGeneratePrompt(words, sentenceCount))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate exam sentences: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: generation payload: %v", llm.ErrInvalidResponse, err)
	}
	if len(parsed.Sentences) == 0 {
		return nil, fmt.Errorf("%w: no sentences generated", llm.ErrInvalidResponse)
	}

	sentences := make([]llm.ExamSentence, 0, len(parsed.Sentences))
	for _, sent := range parsed.Sentences {
		if sent.Sentence == "" {
			continue
		}
		sentences = append(sentences, sent)
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: all generated sentences were empty", llm.ErrInvalidResponse)
	}

	return sentences, nil
}

// GradeTranslation judges the submitted answers, one result per submission
// the model managed to grade.
func (s *Service) GradeTranslation(ctx context.Context, submissions []llm.TranslationSubmission) ([]llm.GradeResult, error) {
	if len(submissions) == 0 {
		return nil, llm.ErrEmptyInput
	}

	items := make([]gradeItem, len(submissions))
	for i, sub := range submissions {
		items[i] = gradeItem{
			SentenceID:    sub.SentenceID,
			Sentence:      sub.Sentence,
			Answer:        sub.Answer,
			RequiredWords: sub.RequiredWords,
		}
	}

	text, err := s.retry.do(ctx, "grade_translation", func(ctx context.Context) (string, error) {
		return s.gen.generate(ctx, gradeSystem, buildGradePrompt(items))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grade translations: %w", err)
	}

	var parsed gradeResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: grading payload: %v", llm.ErrInvalidResponse, err)
	}

	return parsed.Results, nil
}
