package choice

// Grading is the host-owned scoring configuration.
type Grading struct {
	SinglePoint    bool
	PassPercentage float64
}

// Tally summarises the selection the grading policy looks at.
type Tally struct {
	Mode            Mode
	NumCorrect      int // authored-correct options
	Selected        int
	SelectedCorrect int
	SelectedWrong   int
	// ExclusiveCorrect is whether the single-answer selection is correct.
	ExclusiveCorrect bool
}

// Raw is +1 per selected correct option and -1 per selected wrong one, floored at 0.
func (t Tally) Raw() int {
	raw := t.SelectedCorrect - t.SelectedWrong
	if raw < 0 {
		return 0
	}
	return raw
}

// Grade computes the score. Branches are evaluated top to bottom and are exclusive.
func Grade(t Tally, g Grading) int {
	if t.Selected == 0 {
		if t.NumCorrect == 0 {
			return 1
		}
		return 0
	}
	if t.Mode == SingleAnswer {
		if t.ExclusiveCorrect {
			return 1
		}
		return 0
	}

	raw := t.Raw()
	// NumCorrect == 0 never divides: the blank-correct branch or the raw branch handles it.
	if g.SinglePoint && t.NumCorrect > 0 {
		if float64(raw)*100/float64(t.NumCorrect) >= g.PassPercentage {
			return 1
		}
		return 0
	}
	return raw
}

// MaxScore is 1 for single point, single answer or blank-correct questions, else the correct count.
func MaxScore(t Tally, g Grading) int {
	if g.SinglePoint || t.Mode == SingleAnswer || t.NumCorrect == 0 {
		return 1
	}
	return t.NumCorrect
}

// Passed compares the score percentage against the pass threshold.
func Passed(score, maxScore int, g Grading) bool {
	if maxScore <= 0 {
		maxScore = 1
	}
	return float64(score)*100/float64(maxScore) >= g.PassPercentage
}
