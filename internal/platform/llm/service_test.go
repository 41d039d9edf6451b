package llm

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/wordpath/wordpath-api/internal/llm"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) generate(ctx context.Context, system, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func (s *stubGenerator) name() string { return "stub" }

func newTestService(gen textGenerator) *Service {
	return &Service{
		gen:    gen,
		retry:  newRetrier(0, 1),
		cache:  newTranslationCache(8),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestTranslateWordsCachesDespiteModelCasing(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{
		response: `{"translations":[{"word":"Apple","meaning":"苹果","phonetic":"ˈæpl","part_of_speech":"n.","sentences":["An apple a day."]}]}`,
	}
	svc := newTestService(gen)

	first, err := svc.TranslateWords(context.Background(), []string{"apple"})
	if err != nil {
		t.Fatalf("first translate: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first translate returned %d results, want 1", len(first))
	}

	second, err := svc.TranslateWords(context.Background(), []string{"apple"})
	if err != nil {
		t.Fatalf("second translate: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("second translate returned %d results, want 1", len(second))
	}
	if len(gen.prompts) != 1 {
		t.Errorf("model called %d times, want 1; a recased echo must still hit the cache", len(gen.prompts))
	}
}

func TestGradeTranslationPromptCarriesRequiredWords(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{
		response: `{"results":[{"sentence_id":"sent_1","correct":true,"feedback":"很好"}]}`,
	}
	svc := newTestService(gen)

	_, err := svc.GradeTranslation(context.Background(), []llm.TranslationSubmission{{
		SentenceID:    "sent_1",
		Sentence:      "An unexpected but happy discovery.",
		Answer:        "一个意外而愉快的发现",
		RequiredWords: []string{"serendipity"},
	}})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "serendipity") {
		t.Errorf("grade prompt does not carry the required word:\n%s", gen.prompts[0])
	}
}
