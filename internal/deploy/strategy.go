package deploy

import "fmt"

// Strategy decides which deploy paths the manager uses. It is fixed at
// construction.
type Strategy int

const (
	// RemoteWithFallback deploys through the API and falls back to a direct
	// deploy when the API is unreachable or times out.
	RemoteWithFallback Strategy = iota
	// RemoteOnly never deploys directly.
	RemoteOnly
	// DirectOnly skips the API.
	DirectOnly
)

// ParseStrategy maps the config names remote, remote-fallback and direct.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "remote-fallback", "":
		return RemoteWithFallback, nil
	case "remote":
		return RemoteOnly, nil
	case "direct":
		return DirectOnly, nil
	}
	return 0, fmt.Errorf("unknown deploy strategy %q", s)
}

func (s Strategy) String() string {
	switch s {
	case RemoteWithFallback:
		return "remote-fallback"
	case RemoteOnly:
		return "remote"
	case DirectOnly:
		return "direct"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Phase is the manager's position in the deploy state machine.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Fallback
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "IDLE"
	case InFlight:
		return "IN_FLIGHT"
	case Fallback:
		return "FALLBACK"
	case Succeeded:
		return "SUCCEEDED"
	case Failed:
		return "FAILED"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Busy reports whether an attempt holds the manager.
func (p Phase) Busy() bool { return p == InFlight || p == Fallback }

// Transition is one state-machine step of an attempt.
type Transition struct {
	Attempt string
	From    Phase
	To      Phase
}
