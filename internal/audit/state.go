package audit

// State is a step of one audit run.
type State string

const (
	StateInit      State = "INIT"
	StateExtracted State = "EXTRACTED"
	StateEvaluated State = "EVALUATED"
	StateScored    State = "SCORED"
	StateReported  State = "REPORTED"
	StateFailed    State = "FAILED"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateReported || s == StateFailed
}

// machine walks one run through its states and reports each transition to
// the configured hook.
type machine struct {
	state State
	hook  func(from, to State)
}

func newMachine(hook func(from, to State)) *machine {
	return &machine{state: StateInit, hook: hook}
}

func (m *machine) advance(to State) {
	from := m.state
	m.state = to
	if m.hook != nil {
		m.hook(from, to)
	}
}
