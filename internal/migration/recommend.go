package migration

import (
	"regexp"
	"sort"

	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/sections"
)

// Recommendation suggests a target variant for a legacy section.
type Recommendation struct {
	Variant    sections.Variant `json:"variant"`
	TypeID     string           `json:"typeId"`
	Reason     string           `json:"reason"`
	Confidence float64          `json:"confidence"`
}

var actionWords = regexp.MustCompile(`(?i)\b(buy|shop|order|start|get|join|sign ?up|subscribe|register|try|download|book|claim)\b`)

type heuristic struct {
	variant    sections.Variant
	confidence float64
	reason     string
	matches    func(l *legacyHero) bool
}

// heuristics are listed in declaration order, which breaks confidence ties. Only the relative
// order of the confidences is meaningful.
var heuristics = []heuristic{
	{
		variant:    sections.VariantCentered,
		confidence: 0.9,
		reason:     "Title, subtitle and button map directly onto the centered layout",
		matches: func(l *legacyHero) bool {
			return l.has(attrTitle) && (l.has(attrSubtitle) || l.has(attrDescription)) && l.has(attrButtonText)
		},
	},
	{
		variant:    sections.VariantSplitScreen,
		confidence: 0.8,
		reason:     "The background image can become the side media",
		matches: func(l *legacyHero) bool {
			return l.has(attrBackgroundImage)
		},
	},
	{
		variant:    sections.VariantVideo,
		confidence: 0.85,
		reason:     "A video URL is present",
		matches: func(l *legacyHero) bool {
			return l.has(attrVideoURL)
		},
	},
	{
		variant:    sections.VariantMinimal,
		confidence: 0.7,
		reason:     "Only a title and a button are set",
		matches: func(l *legacyHero) bool {
			return l.has(attrTitle) && l.has(attrButtonText) && !l.has(attrSubtitle) && !l.has(attrDescription)
		},
	},
	{
		variant:    sections.VariantCTA,
		confidence: 0.6,
		reason:     "The copy is action oriented",
		matches: func(l *legacyHero) bool {
			return actionWords.MatchString(l.peek(attrTitle)) || actionWords.MatchString(l.peek(attrButtonText))
		},
	},
}

// RecommendVariants ranks the variants whose heuristic matches old, highest confidence first.
// Variants with no matching heuristic are omitted.
func RecommendVariants(old models.Properties) []Recommendation {
	legacy, _ := readLegacy(old)

	recs := make([]Recommendation, 0, len(heuristics))
	for _, h := range heuristics {
		if !h.matches(legacy) {
			continue
		}
		recs = append(recs, Recommendation{
			Variant:    h.variant,
			TypeID:     h.variant.TypeID(),
			Reason:     h.reason,
			Confidence: h.confidence,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence > recs[j].Confidence
	})
	return recs
}
