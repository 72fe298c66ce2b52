package analysis

// Kind identifies one analysis pass. It selects the prompt template, the
// comment header, and the normalization repair strategy.
type Kind string

const (
	KindDescribe    Kind = "describe"
	KindReview      Kind = "review"
	KindCompliance  Kind = "compliance"
	KindAutoApprove Kind = "auto-approve"
	KindAsk         Kind = "ask"
	KindImprove     Kind = "improve"
	KindTests       Kind = "tests"
	KindSecurity    Kind = "security"
	KindLabels      Kind = "labels"
	KindReply       Kind = "reply"
)

// ComprehensiveKinds is the fixed order used by the comprehensive ("all")
// run. Labels runs separately and is not in this list.
var ComprehensiveKinds = []Kind{
	KindDescribe,
	KindReview,
	KindCompliance,
	KindAutoApprove,
	KindAsk,
	KindImprove,
	KindTests,
}

// AllKinds lists every recognized kind, used for CLI validation and listing.
var AllKinds = []Kind{
	KindDescribe,
	KindReview,
	KindCompliance,
	KindAutoApprove,
	KindAsk,
	KindImprove,
	KindTests,
	KindSecurity,
	KindLabels,
	KindReply,
}

// kindTitles is the bijective kind -> comment title mapping. The reconciler
// matches existing comments on these titles, so changing one orphans the
// previous comment for that kind.
var kindTitles = map[Kind]string{
	KindDescribe:    "Description",
	KindReview:      "Review",
	KindCompliance:  "Compliance",
	KindAutoApprove: "Auto-Approve",
	KindAsk:         "Q&A",
	KindImprove:     "Improvements",
	KindTests:       "Test Analysis",
	KindSecurity:    "Security",
	KindLabels:      "Labels",
	KindReply:       "Reply",
}

var kindEmojis = map[Kind]string{
	KindDescribe:    "📋",
	KindReview:      "🔍",
	KindCompliance:  "✅",
	KindAutoApprove: "🚦",
	KindAsk:         "❓",
	KindImprove:     "💡",
	KindTests:       "🧪",
	KindSecurity:    "🔒",
	KindLabels:      "🏷️",
	KindReply:       "💬",
}

// Valid reports whether k is a recognized analysis kind.
func (k Kind) Valid() bool {
	_, ok := kindTitles[k]
	return ok
}

// Title returns the canonical comment title for the kind.
func (k Kind) Title() string {
	if t, ok := kindTitles[k]; ok {
		return t
	}
	return "Analysis"
}

// Emoji returns the marker emoji used in comment headers for the kind.
func (k Kind) Emoji() string {
	if e, ok := kindEmojis[k]; ok {
		return e
	}
	return "🤖"
}

// ParseKind validates and converts a string to a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	return k, k.Valid()
}
