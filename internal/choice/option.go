package choice

// Mark is the grading decoration shown on an option.
type Mark int

const (
	Unmarked Mark = iota
	// MarkCorrect is a selected option that is part of the answer key.
	MarkCorrect
	// MarkWrong is a selected option that is not part of the answer key.
	MarkWrong
	// MarkSolution is an unselected option that should have been selected.
	MarkSolution
)

func (m Mark) String() string {
	switch m {
	case MarkCorrect:
		return "correct"
	case MarkWrong:
		return "wrong"
	case MarkSolution:
		return "solution"
	}
	return ""
}

// Option is one selectable choice. correct is fixed at construction.
type Option struct {
	index    int
	correct  bool
	selected bool
	disabled bool
	mark     Mark
}

func (o *Option) Index() int     { return o.index }
func (o *Option) Correct() bool  { return o.correct }
func (o *Option) Selected() bool { return o.selected }
func (o *Option) Disabled() bool { return o.disabled }
func (o *Option) Mark() Mark     { return o.mark }

// setSelected reports whether the option changed. Disabled options never change.
func (o *Option) setSelected(v bool) bool {
	if o.disabled || o.selected == v {
		return false
	}
	o.selected = v
	return true
}

// OptionView is a read-only copy of an option's state.
type OptionView struct {
	Index    int
	Selected bool
	Disabled bool
	Mark     Mark
}
