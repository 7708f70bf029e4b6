package session

// Phase is where a state sits in the ask/answer cycle.
type Phase string

const (
	Idle      Phase = "idle"
	Submitted Phase = "submitted"
)

func (s State) Phase() Phase {
	if s.AskedQuestion == "" {
		return Idle
	}
	return Submitted
}

// Event is an input to Transition.
type Event interface{ event() }

// SubmitQuestion is the visitor typing a question and pressing enter.
type SubmitQuestion struct{ Text string }

// SelectFollowup is the visitor clicking a suggested follow-up question.
type SelectFollowup struct{ Text string }

// Consume moves a submitted question into Question ahead of answering it.
type Consume struct{}

func (SubmitQuestion) event() {}
func (SelectFollowup) event() {}
func (Consume) event()        {}

// Transition applies ev to s and returns the result. It performs no I/O.
func Transition(s State, ev Event) State {
	switch e := ev.(type) {
	case SubmitQuestion:
		s.AskedQuestion = e.Text
	case SelectFollowup:
		s.AskedQuestion = e.Text
		s.InputMessageKey++
	case Consume:
		if s.AskedQuestion != "" {
			s.Question = s.AskedQuestion
			s.AskedQuestion = ""
		}
	}
	return s
}
