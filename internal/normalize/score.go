package normalize

import (
	"regexp"
	"strconv"
)

// scorePattern is one entry in an ordered pattern list. Lists are tried in
// declaration order and the first pattern yielding an in-range integer wins,
// regardless of where later patterns would match in the text.
type scorePattern struct {
	re *regexp.Regexp
	// scale10 treats a matched value in [0,10] as a 0-10 rating and
	// multiplies it by 10. A genuine 8-out-of-100 cannot be told apart from
	// 8-out-of-10; the value is scaled either way.
	scale10 bool
}

var qualityPatterns = []scorePattern{
	{re: regexp.MustCompile(`(?i)quality\s*(?:score)?\s*[:=]?\s*(\d{1,3})`)},
	{re: regexp.MustCompile(`(?i)\bscore\s*[:=]?\s*(\d{1,3})`)},
	{re: regexp.MustCompile(`(?i)\brating\s*[:=]?\s*(\d{1,3})`)},
	{re: regexp.MustCompile(`(\d{1,3})\s*%`)},
	{re: regexp.MustCompile(`(?i)\|\s*\*\*Overall Quality\*\*\s*\|\s*(\d{1,3})`)},
}

var securityPatterns = []scorePattern{
	{re: regexp.MustCompile(`(?i)security\s*(?:score|rating)?\s*[:=]?\s*(\d{1,3})`), scale10: true},
	{re: regexp.MustCompile(`(?i)\|\s*\*\*Security\*\*\s*\|\s*(\d{1,3})`), scale10: true},
	{re: regexp.MustCompile(`(?i)\|\s*\*\*Security Score\*\*\s*\|\s*(\d{1,3})`), scale10: true},
}

const (
	defaultQualityScore  = 75
	defaultSecurityScore = 80
)

// extractScore runs an ordered pattern list over text. Returns the winning
// score and whether any pattern matched an acceptable value.
func extractScore(text string, patterns []scorePattern) (int, bool) {
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if p.scale10 && n >= 0 && n <= 10 {
				return n * 10, true
			}
			if n >= 0 && n <= 100 {
				return n, true
			}
		}
	}
	return 0, false
}
