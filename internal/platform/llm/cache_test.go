package llm

import (
	"testing"

	"github.com/wordpath/wordpath-api/internal/llm"
)

func TestTranslationCacheEvictsOldest(t *testing.T) {
	t.Parallel()

	c := newTranslationCache(2)
	c.put("apple", llm.Translation{Word: "apple"})
	c.put("banana", llm.Translation{Word: "banana"})
	c.put("cherry", llm.Translation{Word: "cherry"})

	if _, ok := c.get("apple"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := c.get("banana"); !ok {
		t.Error("expected banana to remain cached")
	}
	if _, ok := c.get("cherry"); !ok {
		t.Error("expected cherry to remain cached")
	}
	if got := c.len(); got != 2 {
		t.Errorf("len() = %d, want 2", got)
	}
}

func TestTranslationCacheUpdateDoesNotEvict(t *testing.T) {
	t.Parallel()

	c := newTranslationCache(2)
	c.put("apple", llm.Translation{Word: "apple", Meaning: "old"})
	c.put("banana", llm.Translation{Word: "banana"})
	c.put("apple", llm.Translation{Word: "apple", Meaning: "new"})

	got, ok := c.get("apple")
	if !ok {
		t.Fatal("expected apple to remain cached")
	}
	if got.Meaning != "new" {
		t.Errorf("Meaning = %q, want %q", got.Meaning, "new")
	}
	if _, ok := c.get("banana"); !ok {
		t.Error("update must not evict other entries")
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"raw", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced_no_lang", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padded", "  {\"a\":1}\n", `{"a":1}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := extractJSON(tc.in); got != tc.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
