package submission

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sharanvarma0/student-submissions/internal/store"
)

// GradeBand maps an inclusive minimum percentage to a qualitative label.
type GradeBand struct {
	MinPercent float64 `json:"min_percent"`
	Label      string  `json:"label"`
}

// GradeScale is an ordered band table evaluated top-down; the first band whose
// minimum is not above the percentage wins. The thresholds are policy, not
// law: callers may supply their own scale.
type GradeScale []GradeBand

// DefaultGradeScale returns the stock grading policy.
func DefaultGradeScale() GradeScale {
	return GradeScale{
		{MinPercent: 90, Label: "A+ - Excellent"},
		{MinPercent: 75, Label: "A - Very Good"},
		{MinPercent: 60, Label: "B - Good"},
		{MinPercent: 40, Label: "C - Average"},
		{MinPercent: 0, Label: "F - Fail"},
	}
}

// ParseGradeScale decodes a "min:label,min:label" string, e.g.
// "90:A+ - Excellent,75:A - Very Good". Returns nil when the input is empty
// or malformed so callers can fall back to the default scale.
func ParseGradeScale(raw string) GradeScale {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var scale GradeScale
	for _, part := range strings.Split(raw, ",") {
		minStr, label, ok := strings.Cut(part, ":")
		if !ok {
			return nil
		}
		minPercent, err := strconv.ParseFloat(strings.TrimSpace(minStr), 64)
		if err != nil {
			return nil
		}
		label = strings.TrimSpace(label)
		if label == "" {
			return nil
		}
		scale = append(scale, GradeBand{MinPercent: minPercent, Label: label})
	}
	sort.SliceStable(scale, func(i, j int) bool { return scale[i].MinPercent > scale[j].MinPercent })
	return scale
}

// Grade returns the label of the first band at or below the percentage.
func (s GradeScale) Grade(percentage float64) string {
	for _, band := range s {
		if percentage >= band.MinPercent {
			return band.Label
		}
	}
	if len(s) > 0 {
		return s[len(s)-1].Label
	}
	return ""
}

// ScoreExam compares answers against the exam's correct options positionally:
// the Nth answer belongs to the Nth question. Questions past the end of the
// answer list count as unanswered, answers past the end of the question list
// are ignored. An exam with zero questions scores 0.0 rather than dividing
// by zero.
func ScoreExam(exam *store.Exam, answers []string) (correct int, percentage float64) {
	total := len(exam.Questions)
	if total == 0 {
		return 0, 0.0
	}
	for i, q := range exam.Questions {
		if i < len(answers) && answers[i] == q.CorrectOption {
			correct++
		}
	}
	return correct, float64(correct) / float64(total) * 100
}

// FormatResult renders the stored result string, percentage with exactly one
// decimal digit.
func FormatResult(percentage float64, label string) string {
	return fmt.Sprintf("%.1f%% - %s", percentage, label)
}
