package analysis

import "strings"

const (
	highKeywordWeight   = 5
	mediumKeywordWeight = 2
	maxScore            = 100
)

// HighRiskKeywords are phrases strongly associated with scams.
var HighRiskKeywords = []string{
	"bitcoin", "crypto", "wallet", "urgent", "payment", "verify", "account", "suspicious",
	"otp", "pin", "password", "credit card", "ssn", "social security", "gift card",
	"lottery", "winner", "won", "prize", "claim", "inheritance", "prince", "million",
	"loan", "investment", "work from home", "make money", "easy cash", "get paid",
	"betting", "gambling", "jackpot", "casino", "slots", "poker",
}

// MediumRiskKeywords are common in scams but also in legitimate marketing.
var MediumRiskKeywords = []string{
	"offer", "limited time", "discount", "sale", "special", "exclusive", "guarantee",
	"cash back", "opportunity", "click here", "download", "activate", "verify",
	"update", "confirm", "service", "request", "process", "application",
	"bet now", "play now", "odds", "win big", "sports betting",
}

// KeywordScore is the outcome of scanning one text.
type KeywordScore struct {
	High   []string `json:"high"`
	Medium []string `json:"medium"`
	Score  int      `json:"score"`
}

// Matched returns the distinct matched keywords, high tier first.
func (k KeywordScore) Matched() []string {
	set := newOrderedSet()
	for _, kw := range k.High {
		set.add(kw)
	}
	for _, kw := range k.Medium {
		set.add(kw)
	}
	out := set.list()
	if out == nil {
		return []string{}
	}
	return out
}

// KeywordScorer is a stateless heuristic scanner over two keyword tiers.
type KeywordScorer struct {
	high   []string
	medium []string
}

// NewKeywordScorer returns a scorer over the built-in keyword tiers.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{high: HighRiskKeywords, medium: MediumRiskKeywords}
}

// Score matches text case-insensitively against every keyword in both tiers.
func (s *KeywordScorer) Score(text string) KeywordScore {
	lower := strings.ToLower(text)
	result := KeywordScore{
		High:   matchTier(lower, s.high),
		Medium: matchTier(lower, s.medium),
	}
	result.Score = min(maxScore, highKeywordWeight*len(result.High)+mediumKeywordWeight*len(result.Medium))
	return result
}

func matchTier(lower string, tier []string) []string {
	matches := []string{}
	seen := make(map[string]bool, len(tier))
	for _, kw := range tier {
		kw = strings.ToLower(kw)
		if seen[kw] {
			continue
		}
		if strings.Contains(lower, kw) {
			seen[kw] = true
			matches = append(matches, kw)
		}
	}
	return matches
}
