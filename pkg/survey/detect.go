package survey

import (
	"strings"

	"ai-survey-be/internal/constant"
)

// Detector tags a generated reply with a best-guess category by keyword
// matching. First category whose list matches a substring of the lower-cased
// reply wins; no match means no category.
type Detector struct {
	keywords map[string][]string
	order    []string
}

func NewDetector() *Detector {
	return &Detector{
		keywords: constant.DetectionKeywords,
		order:    constant.CategoryKeys(),
	}
}

// Detect returns the matched category key, or "" when nothing matches.
func (d *Detector) Detect(reply string) string {
	lower := strings.ToLower(reply)
	for _, category := range d.order {
		for _, keyword := range d.keywords[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	return ""
}
