package moderation

import "strings"

type categoryRule struct {
	name     string
	keywords []string
}

// Checked in order; the first hit wins.
var categoryRules = []categoryRule{
	{name: "suicide", keywords: []string{"suicide", "suicidal", "kill myself", "end my life", "self-harm", "self harm"}},
	{name: "violence", keywords: []string{"violence", "violent", "kill", "attack", "hurt"}},
	{name: "abuse", keywords: []string{"abuse", "abusive", "harass", "bully"}},
	{name: "threat", keywords: []string{"threat", "threaten", "bomb", "weapon"}},
}

// DeriveCategory infers a coarse category from the verdict reason and
// the submitted text. It returns "unspecified" when nothing matches.
func DeriveCategory(reason, text string) string {
	reason = strings.ToLower(reason)
	text = strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(reason, kw) || strings.Contains(text, kw) {
				return rule.name
			}
		}
	}
	return unspecifiedCategory
}
