// Package classifier turns detection output into a single activity label.
//
// The decision is a strict priority cascade: rules are evaluated in order
// and the first match wins. Rule order is load-bearing, so the cascade is
// expressed as an ordered rule table rather than nested conditionals.
package classifier

// Activity labels produced by the primary cascade.
const (
	ActivityUsingPhone = "Using Phone"
	ActivityAbsent     = "Student Absent"
	ActivityEating     = "Eating/Drinking"
	ActivitySleeping   = "Sleeping/Distracted"
	ActivityHandRaised = "Hand Raised (Participating)"
	ActivityLaptop     = "Working on Laptop"
	ActivityReading    = "Reading/Studying"
	ActivityWriting    = "Writing/Focused"
	ActivityAttentive  = "Attentive/Listening"
)

// Activity labels produced by the fallback path.
const (
	FallbackHighActivity  = "High Activity Detected"
	FallbackLowVisibility = "Low Visibility"
	FallbackAttentive     = "Attentive"
)

// Signals are the classifier inputs for one frame: the confidence-filtered
// object labels plus the pose geometry flags.
type Signals struct {
	Objects    []string
	HeadDown   bool
	HandRaised bool
}

// Outcome is the classification for one frame. Unusual and Confidence are
// table-driven constants per rule, never computed.
type Outcome struct {
	Activity   string
	Unusual    bool
	Confidence float64
}

type rule struct {
	match   func(Signals) bool
	outcome Outcome
}

var foodObjects = []string{"fork", "spoon", "bowl", "cup", "bottle"}

// cascade is evaluated top to bottom; the first matching rule wins and
// every later rule is unreachable for that frame.
var cascade = []rule{
	{
		match:   func(s Signals) bool { return s.has("cell phone") },
		outcome: Outcome{ActivityUsingPhone, true, 0.95},
	},
	{
		match:   func(s Signals) bool { return !s.has("person") },
		outcome: Outcome{ActivityAbsent, true, 0.90},
	},
	{
		match:   func(s Signals) bool { return s.hasAny(foodObjects) },
		outcome: Outcome{ActivityEating, true, 0.85},
	},
	{
		match:   func(s Signals) bool { return s.HeadDown && !s.has("book") && !s.has("laptop") },
		outcome: Outcome{ActivitySleeping, true, 0.75},
	},
	{
		match:   func(s Signals) bool { return s.HandRaised },
		outcome: Outcome{ActivityHandRaised, false, 0.90},
	},
	{
		match:   func(s Signals) bool { return s.has("laptop") },
		outcome: Outcome{ActivityLaptop, false, 0.85},
	},
	{
		match:   func(s Signals) bool { return s.has("book") },
		outcome: Outcome{ActivityReading, false, 0.80},
	},
	{
		match:   func(s Signals) bool { return s.HeadDown },
		outcome: Outcome{ActivityWriting, false, 0.70},
	},
	{
		match:   func(Signals) bool { return true },
		outcome: Outcome{ActivityAttentive, false, 0.65},
	},
}

// Classify runs the primary rule cascade. It is deterministic: the same
// signals always yield the same outcome.
func Classify(s Signals) Outcome {
	for _, r := range cascade {
		if r.match(s) {
			return r.outcome
		}
	}
	// The last rule always matches; this is unreachable.
	return Outcome{ActivityAttentive, false, 0.65}
}

// fallbackConfidence is fixed regardless of branch: the fallback inputs
// carry no finer signal.
const fallbackConfidence = 0.60

// ClassifyFallback is the simpler heuristic path used when the primary
// detector is unavailable. It only sees face count, edge density (percent)
// and mean brightness.
func ClassifyFallback(faceCount int, edgeDensity, brightness float64) Outcome {
	switch {
	case faceCount == 0:
		return Outcome{ActivityAbsent, true, fallbackConfidence}
	case edgeDensity > 15:
		return Outcome{FallbackHighActivity, false, fallbackConfidence}
	case brightness < 50:
		return Outcome{FallbackLowVisibility, true, fallbackConfidence}
	default:
		return Outcome{FallbackAttentive, false, fallbackConfidence}
	}
}

func (s Signals) has(label string) bool {
	for _, obj := range s.Objects {
		if obj == label {
			return true
		}
	}
	return false
}

func (s Signals) hasAny(labels []string) bool {
	for _, label := range labels {
		if s.has(label) {
			return true
		}
	}
	return false
}
