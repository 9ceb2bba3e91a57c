// Package healthtext reduces free-text health narratives to categorical flags.
//
// The keyword strategy here is the deterministic baseline the scoring gateway
// falls back to when the inference service is disabled or unreachable. It is
// intentionally simple: lowercase, strip punctuation, match vocabulary terms
// against tokens, naive lemmas, and 2-3 word phrases, with a substring check
// over the whole text as a final net. Negation is not modeled: "no illness"
// still yields recent_illness. The context-aware remote path behaves
// differently on such inputs and the divergence is accepted.
package healthtext

import "strings"

// Flag is a categorical health tag drawn from the fixed vocabulary.
type Flag string

const (
	FlagRecentIllness    Flag = "recent_illness"
	FlagDiabetes         Flag = "diabetes"
	FlagAnemia           Flag = "anemia"
	FlagBP               Flag = "bp"
	FlagMedication       Flag = "medication"
	FlagSeriousCondition Flag = "serious_condition"
)

// AllFlags lists the vocabulary in canonical order. Normalize emits flags in
// this order so results are stable across runs.
var AllFlags = []Flag{
	FlagRecentIllness,
	FlagDiabetes,
	FlagAnemia,
	FlagBP,
	FlagMedication,
	FlagSeriousCondition,
}

// IsValid reports whether s names a known flag.
func IsValid(s string) bool {
	for _, f := range AllFlags {
		if string(f) == s {
			return true
		}
	}
	return false
}

// Canon filters a raw flag list down to known vocabulary entries, dropping
// duplicates while preserving the input order. Used to constrain flag lists
// received from the inference service.
func Canon(raw []string) []Flag {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[Flag]bool, len(raw))
	out := make([]Flag, 0, len(raw))
	for _, s := range raw {
		f := Flag(strings.TrimSpace(strings.ToLower(s)))
		if !IsValid(string(f)) || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Strings converts a flag list to its wire representation.
func Strings(flags []Flag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f)
	}
	return out
}

// Contains reports whether flags includes f.
func Contains(flags []Flag, f Flag) bool {
	for _, have := range flags {
		if have == f {
			return true
		}
	}
	return false
}

// Normalize maps a free-text health narrative to the set of flags whose
// vocabulary terms appear in it. Empty or whitespace-only input yields no
// flags. Matching is case-insensitive and tolerant of simple inflection.
func Normalize(text string) []Flag {
	normalized := collapseSpace(strings.ToLower(text))
	if normalized == "" {
		return nil
	}

	tokens := tokenSet(normalized)

	var flags []Flag
	for _, entry := range vocabulary {
		for _, term := range entry.terms {
			if tokens[term] || strings.Contains(normalized, term) {
				flags = append(flags, entry.flag)
				break
			}
		}
	}
	return flags
}

// tokenSet builds the lookup set for term matching: individual tokens, their
// naive lemmas, and sliding 2-3 word phrases.
func tokenSet(normalized string) map[string]bool {
	depunct := strings.Map(func(r rune) rune {
		if isAlnum(r) || r == ' ' {
			return r
		}
		return ' '
	}, normalized)

	words := strings.Fields(depunct)
	set := make(map[string]bool, len(words)*3)

	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		set[w] = true
		for _, lemma := range lemmas(w) {
			set[lemma] = true
		}
	}

	// Phrases come from the raw word sequence so multi-word terms like
	// "blood pressure" and "sore throat" match as written.
	for i := range words {
		for n := 2; n <= 3; n++ {
			if i+n <= len(words) {
				set[strings.Join(words[i:i+n], " ")] = true
			}
		}
	}
	return set
}

// lemmas returns naive suffix reductions of w. This stands in for a full
// lemmatizer; the substring fallback in Normalize covers what it misses.
func lemmas(w string) []string {
	var out []string
	switch {
	case strings.HasSuffix(w, "ing") && len(w) > 4:
		out = append(out, w[:len(w)-3])
	case strings.HasSuffix(w, "ed") && len(w) > 3:
		out = append(out, w[:len(w)-2])
	case strings.HasSuffix(w, "es") && len(w) > 3:
		out = append(out, w[:len(w)-2])
	case strings.HasSuffix(w, "s") && len(w) > 2 && !strings.HasSuffix(w, "ss"):
		out = append(out, w[:len(w)-1])
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
