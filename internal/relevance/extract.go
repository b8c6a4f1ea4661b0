package relevance

import (
	"sort"
	"strings"

	"github.com/sells-group/lex-research/internal/knowledge"
)

// Extractor narrows a corpus down to the passages relevant to a question
// before the corpus is sent to a token-limited model. It is a pure
// function of its inputs: identical (corpus, prompt, maxChars) always
// yields identical output.
type Extractor struct {
	table Table
}

// NewExtractor creates an Extractor over the given keyword table.
func NewExtractor(table Table) *Extractor {
	return &Extractor{table: table}
}

// scoredSection is a per-document excerpt with its keyword hit count.
type scoredSection struct {
	index int
	score int
	text  string
}

// Extract selects the corpus passages relevant to the question prompt and
// truncates the result to at most maxChars characters (runes, since the
// domain language is multi-byte). It never returns an empty string for a
// non-empty corpus: when keyword selection finds nothing, the raw corpus
// prefix is returned instead so the model always receives grounding text.
func (e *Extractor) Extract(corpus, prompt string, maxChars int) string {
	if corpus == "" || maxChars <= 0 {
		return ""
	}

	keywords := e.selectKeywords(prompt)
	sections := splitSections(corpus)

	var survivors []scoredSection
	for i, section := range sections {
		if countHits(section, keywords) == 0 {
			continue
		}
		condensed := condense(section, keywords)
		if condensed == "" {
			continue
		}
		survivors = append(survivors, scoredSection{
			index: i,
			score: countHits(condensed, keywords),
			text:  condensed,
		})
	}

	if len(survivors) == 0 {
		return truncateRunes(corpus, maxChars)
	}

	joined := joinSections(survivors)
	if runeLen(joined) <= maxChars {
		return joined
	}

	// Over budget: keep whole sections greedily in descending score order.
	// A section that would overflow is dropped entirely rather than cut
	// mid-section.
	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].score != survivors[j].score {
			return survivors[i].score > survivors[j].score
		}
		return survivors[i].index < survivors[j].index
	})

	var selected []scoredSection
	used := 0
	for _, s := range survivors {
		cost := runeLen(s.text)
		if len(selected) > 0 {
			cost += runeLen(sectionJoiner)
		}
		if used+cost > maxChars {
			continue
		}
		selected = append(selected, s)
		used += cost
	}

	if len(selected) == 0 {
		return truncateRunes(corpus, maxChars)
	}
	return joinSections(selected)
}

// selectKeywords returns the union of keywords from every category whose
// keywords appear in the prompt, or the fallback set when none match.
func (e *Extractor) selectKeywords(prompt string) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, cat := range e.table.Categories {
		if !matchesPrompt(prompt, cat.Keywords) {
			continue
		}
		for _, kw := range cat.Keywords {
			if !seen[kw] {
				seen[kw] = true
				keywords = append(keywords, kw)
			}
		}
	}
	if len(keywords) == 0 {
		return e.table.Fallback
	}
	return keywords
}

func matchesPrompt(prompt string, keywords []string) bool {
	lower := strings.ToLower(prompt)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

const sectionJoiner = "\n" + knowledge.SectionDelimiter + "\n"

func splitSections(corpus string) []string {
	parts := strings.Split(corpus, knowledge.SectionDelimiter)
	var sections []string
	for _, p := range parts {
		p = strings.Trim(p, "\n")
		if p != "" {
			sections = append(sections, p)
		}
	}
	return sections
}

func countHits(text string, keywords []string) int {
	lower := strings.ToLower(text)
	total := 0
	for _, kw := range keywords {
		total += strings.Count(lower, strings.ToLower(kw))
	}
	return total
}

// condense reduces a section to the context windows around keyword hits:
// each matching line is expanded to itself, the line before and the two
// lines after, clamped to section bounds. Duplicate windows are dropped by
// exact text equality, which can also drop legitimately repeated
// boilerplate; that matches the historical behavior and is kept as-is.
func condense(section string, keywords []string) string {
	lines := strings.Split(section, "\n")
	seen := make(map[string]bool)
	var windows []string

	for i, line := range lines {
		if countHits(line, keywords) == 0 {
			continue
		}
		start := i - 1
		if start < 0 {
			start = 0
		}
		end := i + 3
		if end > len(lines) {
			end = len(lines)
		}
		window := strings.Join(lines[start:end], "\n")
		if seen[window] {
			continue
		}
		seen[window] = true
		windows = append(windows, window)
	}

	return strings.Join(windows, "\n")
}

func joinSections(sections []scoredSection) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.text
	}
	return strings.Join(parts, sectionJoiner)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
