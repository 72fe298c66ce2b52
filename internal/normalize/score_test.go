package normalize

import "testing"

func TestExtractScore_Quality(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		matched bool
	}{
		{"labeled score", "Quality Score: 95", 95, true},
		{"colon equals", "quality = 82", 82, true},
		{"bare score", "Score: 60 overall", 60, true},
		{"rating", "Rating: 70", 70, true},
		{"percentage", "I would put this at 85% ready", 85, true},
		{"markdown table", "| **Overall Quality** | 91 |", 91, true},
		{"quality label wins over later numbers", "Reviewed 3 files. Quality score: 95. Took 12 seconds.", 95, true},
		{"quality label wins over percentage", "Confidence 99%. Quality score: 95.", 95, true},
		{"out of range skipped", "quality: 250 but really score: 88", 88, true},
		{"no score", "The change looks reasonable.", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractScore(tt.text, qualityPatterns)
			if ok != tt.matched {
				t.Fatalf("matched = %v, want %v", ok, tt.matched)
			}
			if ok && got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExtractScore_Security(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		matched bool
	}{
		{"labeled", "Security Score: 90", 90, true},
		{"small value scaled", "security: 7", 70, true},
		{"ten scaled to hundred", "security rating: 10", 100, true},
		{"table row scaled", "| **Security** | 7 |", 70, true},
		{"table row full scale", "| **Security Score** | 85 |", 85, true},
		{"no score", "No security concerns noted.", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractScore(tt.text, securityPatterns)
			if ok != tt.matched {
				t.Fatalf("matched = %v, want %v", ok, tt.matched)
			}
			if ok && got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}
