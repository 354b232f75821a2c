package classifier

import (
	"fmt"
	"math"
	"strings"

	"scamshield/internal/entitylist"
	"scamshield/internal/models"
)

// Scoring constants for keyword-based categories and evidence boosts.
const (
	baseCategoryScore = 0.5
	perKeywordScore   = 0.15
	maxCategoryScore  = 0.95
	perLinkBoost      = 0.1
	maxLinkBoost      = 0.2
	perUrgencyBoost   = 0.05
	maxUrgencyBoost   = 0.1
)

// RuleClassifier is the deterministic, stateless first layer. Given the same
// text, entity snapshot and threshold it always returns the same outcome.
type RuleClassifier struct{}

// NewRuleClassifier creates the rule layer.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify scores text against the entity lists and category keyword tables.
// Whitelist wins over everything, then blacklist, then keyword scoring with
// link/urgency boosts. "No match" is a valid safe outcome, not an error.
func (c *RuleClassifier) Classify(text string, lists *entitylist.Snapshot, threshold float64) (models.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return models.Outcome{}, fmt.Errorf("%w: empty text", models.ErrInvalidInput)
	}
	if threshold < 0 || threshold > 1 {
		return models.Outcome{}, fmt.Errorf("%w: threshold %v outside [0,1]", models.ErrInvalidInput, threshold)
	}

	lowered := strings.ToLower(text)

	if _, ok := lists.MatchWhitelist(lowered); ok {
		return models.Outcome{
			Category:   CategorySafe,
			RiskScore:  0.0,
			IsScam:     false,
			Confidence: 1.0,
			Origin:     models.OriginWhitelist,
		}, nil
	}

	if _, ok := lists.MatchBlacklist(lowered); ok {
		return models.Outcome{
			Category:   CategoryBlacklisted,
			RiskScore:  1.0,
			IsScam:     true,
			Confidence: 1.0,
			Origin:     models.OriginBlacklist,
		}, nil
	}

	category, score := scoreCategories(lowered)

	boost := math.Min(perLinkBoost*float64(len(linkPattern.FindAllString(lowered, -1))), maxLinkBoost)
	boost += math.Min(perUrgencyBoost*float64(countUrgency(lowered)), maxUrgencyBoost)

	score = clamp01(score + boost)

	return models.Outcome{
		Category:   category,
		RiskScore:  score,
		IsScam:     score >= threshold && category != CategorySafe,
		Confidence: 0.5 + math.Abs(score-0.5),
		Origin:     models.OriginRule,
	}, nil
}

// scoreCategories picks the best-scoring category; ties keep the earliest
// declared category so selection stays deterministic.
func scoreCategories(lowered string) (string, float64) {
	best := CategorySafe
	bestScore := 0.0
	for _, cat := range Categories {
		matches := 0
		for _, keyword := range cat.Keywords {
			if strings.Contains(lowered, keyword) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		score := math.Min(baseCategoryScore+perKeywordScore*float64(matches), maxCategoryScore)
		if score > bestScore {
			best = cat.Name
			bestScore = score
		}
	}
	return best, bestScore
}

func countUrgency(lowered string) int {
	n := 0
	for _, phrase := range urgencyPhrases {
		if strings.Contains(lowered, phrase) {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
