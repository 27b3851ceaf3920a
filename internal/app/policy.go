package app

import "github.com/dkeye/meshcall/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

func (a BackpressureAction) String() string {
	switch a {
	case DropFrame:
		return "drop_frame"
	case KickMember:
		return "kick_member"
	}
	return "no_action"
}

// Policy decides what to do with a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(conn domain.ConnID, event string) BackpressureAction
}

// SimplePolicy closes slow connections; their disconnect then runs the
// regular leave path.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.ConnID, string) BackpressureAction {
	return KickMember
}

// LenientPolicy only drops the frame.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(domain.ConnID, string) BackpressureAction {
	return DropFrame
}

// PolicyByName maps a config value to a Policy, defaulting to SimplePolicy.
func PolicyByName(name string) Policy {
	if name == "drop" {
		return LenientPolicy{}
	}
	return SimplePolicy{}
}
