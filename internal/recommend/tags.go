package recommend

import (
	"sort"
	"strings"
)

const maxSuggestedTags = 5

// ruleBasedTagConfidence is assigned to keyword-derived tags so the
// client can distinguish them from model output.
const ruleBasedTagConfidence = 0.5

// keywordTags maps content keywords to suggested tags for the no-ML
// tagging fallback.
var keywordTags = map[string][]string{
	"study":         {"Study", "Academic", "Study Group"},
	"group":         {"Study Group", "Social", "Club"},
	"meeting":       {"Club", "RSO", "Leadership", "Networking"},
	"computer":      {"Computer Science", "Engineering", "Academic"},
	"engineering":   {"Engineering", "Academic", "Undergraduate"},
	"food":          {"Food", "Free", "Social"},
	"free":          {"Free", "Social", "Pizza"},
	"pizza":         {"Pizza", "Food", "Free", "Social"},
	"career":        {"Career", "Networking", "Professional"},
	"internship":    {"Internship", "Career", "Professional"},
	"volunteer":     {"Volunteer", "Community", "Social"},
	"music":         {"Music", "Cultural", "Entertainment"},
	"dance":         {"Dance", "Cultural", "Social"},
	"game":          {"Games", "Social", "Entertainment"},
	"graduate":      {"Graduate", "Academic", "Professional"},
	"undergraduate": {"Undergraduate", "Academic", "Social"},
	"coffee":        {"Coffee", "Social", "Free"},
	"networking":    {"Networking", "Professional", "Career"},
	"leadership":    {"Leadership", "Professional", "Club"},
	"cultural":      {"Cultural", "Social", "Diversity"},
	"sport":         {"Sports", "Recreation", "Social"},
	"recreation":    {"Recreation", "Sports", "Social"},
	"tutorial":      {"Academic", "Study", "Learning"},
	"workshop":      {"Academic", "Professional", "Learning"},
	"seminar":       {"Academic", "Professional", "Networking"},
}

// RuleBasedTags derives up to five tags from keyword matches in the
// event content, with generic defaults when nothing matches.
func RuleBasedTags(content string) TagSuggestion {
	lowered := strings.ToLower(content)

	set := make(map[string]bool)
	for keyword, tags := range keywordTags {
		if strings.Contains(lowered, keyword) {
			for _, tag := range tags {
				set[tag] = true
			}
		}
	}

	if len(set) == 0 {
		set["Other"] = true
		set["Social"] = true
		set["Academic"] = true
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	if len(tags) > maxSuggestedTags {
		tags = tags[:maxSuggestedTags]
	}

	confidences := make(map[string]float64, len(tags))
	for _, tag := range tags {
		confidences[tag] = ruleBasedTagConfidence
	}
	return TagSuggestion{Tags: tags, Confidences: confidences}
}
