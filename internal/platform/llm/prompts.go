package llm

import (
	"fmt"
	"strings"
)

// Prompt construction for the three model tasks. All prompts demand raw JSON
// so responses can be unmarshaled directly; extractJSON tolerates models that
// wrap output in markdown fences anyway.

const translateSystem = `You are a bilingual dictionary for English learners.
For every word you are given, respond with its Chinese meaning, IPA phonetic
transcription, part of speech, and two short example sentences in English.
Respond with raw JSON only, no markdown, in the form:
{"translations":[{"word":"...","meaning":"...","phonetic":"...","part_of_speech":"...","sentences":["...","..."]}]}
Include every word exactly once. If a word is not a real English word, omit it.`

const generateSystem = `You write short English sentences for a vocabulary exam.
You are given candidate words and a required sentence count. Each sentence must
naturally use one or more of the candidate words, and together the sentences
should cover as many candidate words as possible. Keep sentences simple enough
for an intermediate learner to translate.
Respond with raw JSON only, no markdown, in the form:
{"sentences":[{"sentence":"...","words_involved":["...","..."]}]}
words_involved must list only candidate words, spelled exactly as given.`

const gradeSystem = `You grade Chinese-to-English translation answers.
For each item you receive the original English sentence, the learner's
Chinese translation, and the required words the sentence exercises. Judge
whether the translation preserves the meaning of the sentence. Minor wording
differences are fine, but the translation must convey the meaning of every
required word; an answer that drops or mistranslates a required word is
incorrect.
Respond with raw JSON only, no markdown, in the form:
{"results":[{"sentence_id":"...","correct":true,"feedback":"..."}]}
Feedback is one short sentence in Chinese explaining the judgment.`

// buildTranslatePrompt renders the user message for a translation batch.
func buildTranslatePrompt(words []string) string {
	return fmt.Sprintf("Words to translate:\n%s", strings.Join(words, "\n"))
}

// buildGeneratePrompt renders the user message for sentence generation.
func buildGeneratePrompt(words []string, sentenceCount int) string {
	return fmt.Sprintf("Candidate words: %s\nRequired sentence count: %d",
		strings.Join(words, ", "), sentenceCount)
}

// buildGradePrompt renders the user message for a grading batch.
func buildGradePrompt(items []gradeItem) string {
	var b strings.Builder
	b.WriteString("Items to grade:\n")
	for _, it := range items {
		fmt.Fprintf(&b, "sentence_id: %s\nsentence: %s\nanswer: %s\nrequired words: %s\n\n",
			it.SentenceID, it.Sentence, it.Answer, strings.Join(it.RequiredWords, ", "))
	}
	return b.String()
}

type gradeItem struct {
	SentenceID    string
	Sentence      string
	Answer        string
	RequiredWords []string
}

// extractJSON strips markdown code fences some models insist on emitting
// despite instructions, returning the raw JSON payload.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
