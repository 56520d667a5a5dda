package moderation

import "strings"

const (
	noResultReason      = "No moderation result (allowed by default)."
	emptyAllowReason    = "Content allowed."
	emptyBlockReason    = "Content blocked by moderation."
	unspecifiedCategory = "unspecified"
)

// Verdict is the normalized moderation decision for one piece of text.
// Reason is never empty.
type Verdict struct {
	Safe       bool     `json:"is_safe"`
	Reason     string   `json:"reason"`
	Categories []string `json:"categories,omitempty"`
}

// Normalize maps any provider result onto a Verdict.
func Normalize(raw RawResult) Verdict {
	var v Verdict
	switch r := raw.(type) {
	case Pair:
		v = Verdict{Safe: r.Safe, Reason: r.Reason}
	case Triple:
		v = Verdict{Safe: r.Safe, Reason: r.Reason, Categories: cleanCategories(r.Categories)}
	default:
		return Verdict{Safe: true, Reason: noResultReason}
	}

	if strings.TrimSpace(v.Reason) == "" {
		if v.Safe {
			v.Reason = emptyAllowReason
		} else {
			v.Reason = emptyBlockReason
		}
	}
	return v
}

// PrimaryCategory is the audit category for a blocked text. Explicit
// provider categories win over keyword derivation.
func (v Verdict) PrimaryCategory(text string) string {
	if len(v.Categories) > 0 {
		return v.Categories[0]
	}
	return DeriveCategory(v.Reason, text)
}

func cleanCategories(in []string) []string {
	var out []string
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
