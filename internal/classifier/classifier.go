// Package classifier decides whether free chat text is a weekly report.
package classifier

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinLength is the default length a report must exceed, in characters.
const DefaultMinLength = 10

// DefaultKeywords returns the default report keywords.
func DefaultKeywords() []string {
	return []string{"周报", "#周报", "本周工作", "weekly report"}
}

// IsReportLike reports whether text contains at least one keyword as a
// case-sensitive substring and is longer than minLength characters.
func IsReportLike(text string, keywords []string, minLength int) bool {
	if utf8.RuneCountInString(text) <= minLength {
		return false
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Classifier binds a keyword set and minimum length.
type Classifier struct {
	Keywords  []string
	MinLength int
}

// New returns a Classifier. Empty keywords fall back to DefaultKeywords and
// a negative minLength falls back to DefaultMinLength.
func New(keywords []string, minLength int) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultKeywords()
	}
	if minLength < 0 {
		minLength = DefaultMinLength
	}
	return &Classifier{Keywords: keywords, MinLength: minLength}
}

// Match classifies text with the bound configuration.
func (c *Classifier) Match(text string) bool {
	return IsReportLike(text, c.Keywords, c.MinLength)
}
