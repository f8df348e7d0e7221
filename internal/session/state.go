package session

import "fmt"

// Kind identifies the active variant of a State.
type Kind int

const (
	KindIdle Kind = iota
	KindValidating
	KindProcessing
	KindDone
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindValidating:
		return "validating"
	case KindProcessing:
		return "processing"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is a snapshot of the machine. Only the fields belonging to Kind are
// set: Progress for Processing, OutputPath for Done, Message for Error.
type State struct {
	Kind       Kind
	JobID      string
	Progress   float64
	OutputPath string
	Message    string
	// Generation increases on every accepted transition.
	Generation uint64
}

// Terminal reports whether the state waits for Reset or Dismiss.
func (s State) Terminal() bool {
	return s.Kind == KindDone || s.Kind == KindError
}

func (s State) String() string {
	switch s.Kind {
	case KindProcessing:
		return fmt.Sprintf("processing(%.3f)", s.Progress)
	case KindDone:
		return fmt.Sprintf("done(%s)", s.OutputPath)
	case KindError:
		return fmt.Sprintf("error(%s)", s.Message)
	default:
		return s.Kind.String()
	}
}
