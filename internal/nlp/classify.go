// Package nlp implements the Event Processor (spec.md §4.3): a pure,
// deterministic classify/sentiment/severity/confidence pipeline plus a
// bounded-concurrency batch runner over unprocessed RawEvents. Rule-ordering
// and keyword-scoring shape is grounded on Sergey-Bar-Alfred's
// services/gateway/intelligence.Classifier (ordered ClassificationRule list,
// weighted keyword match), adapted here to the spec's required first-match
// order rather than highest-score.
package nlp

import (
	"strings"

	"geopulse/internal/domain"
)

// classificationRule pairs a category with its ordered anchor lexicon.
type classificationRule struct {
	category domain.RiskCategory
	keywords []string
}

// rules are declared in the fixed priority order the first-match-wins rule
// requires. economic is checked ahead of diplomatic: a title matching both
// (e.g. "Economic sanctions discussed at diplomatic summit") must resolve to
// economic, not diplomatic.
var rules = []classificationRule{
	{
		category: domain.CategoryConflict,
		keywords: []string{"attack", "violence", "fight", "battle", "war", "conflict",
			"assault", "military", "bombing", "terrorism", "insurgency"},
	},
	{
		category: domain.CategoryProtest,
		keywords: []string{"protest", "demonstration", "rally", "march", "strike", "riot",
			"unrest", "civil"},
	},
	{
		category: domain.CategoryEconomic,
		keywords: []string{"trade", "economic", "sanctions", "embargo", "tariff",
			"commerce", "inflation", "gdp", "financial", "market"},
	},
	{
		category: domain.CategoryDiplomatic,
		keywords: []string{"meeting", "summit", "negotiation", "treaty", "agreement",
			"talks", "diplomatic", "embassy", "ambassador"},
	},
}

// conflictKeywords is the conflict rule's anchor lexicon, reused by the
// severity formula's conflict_keyword_count (spec.md §4.3 step 3).
var conflictKeywords = rules[0].keywords

// Classify returns the first category in declared order whose lexicon has
// any keyword present in title (case-insensitive substring match), or
// CategoryOther if none match.
func Classify(title string) domain.RiskCategory {
	lower := strings.ToLower(title)
	for _, rule := range rules {
		if containsAny(lower, rule.keywords) {
			return rule.category
		}
	}
	return domain.CategoryOther
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// conflictKeywordCount counts the total occurrences (not distinct keywords)
// of the conflict anchor lexicon in title, case-insensitive.
func conflictKeywordCount(title string) int {
	lower := strings.ToLower(title)
	count := 0
	for _, kw := range conflictKeywords {
		count += strings.Count(lower, kw)
	}
	return count
}
