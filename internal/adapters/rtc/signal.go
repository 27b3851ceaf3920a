package rtc

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// SignalKind labels a relayed signal for logging; the payload itself is
// forwarded untouched.
type SignalKind string

const (
	SignalOffer     SignalKind = "offer"
	SignalAnswer    SignalKind = "answer"
	SignalPranswer  SignalKind = "pranswer"
	SignalRollback  SignalKind = "rollback"
	SignalCandidate SignalKind = "candidate"
	SignalUnknown   SignalKind = "unknown"
)

// SignalInfo summarizes a signal payload.
type SignalInfo struct {
	Kind SignalKind
	// MediaSections is the number of m= lines in a session description.
	MediaSections int
}

// ClassifySignal inspects an opaque signal payload. Clients send either a
// session description ({type, sdp}) or an ICE candidate ({candidate, ...}),
// sometimes wrapped as {candidate: {...}}.
func ClassifySignal(raw json.RawMessage) SignalInfo {
	var probe struct {
		Type      string          `json:"type"`
		SDP       string          `json:"sdp"`
		Candidate json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return SignalInfo{Kind: SignalUnknown}
	}

	if probe.SDP != "" {
		sd := webrtc.SessionDescription{Type: webrtc.NewSDPType(probe.Type), SDP: probe.SDP}
		info := SignalInfo{Kind: sdpKind(sd.Type)}
		if parsed, err := sd.Unmarshal(); err == nil {
			info.MediaSections = len(parsed.MediaDescriptions)
		}
		return info
	}
	if t := webrtc.NewSDPType(probe.Type); t == webrtc.SDPTypeRollback {
		return SignalInfo{Kind: SignalRollback}
	}

	if len(probe.Candidate) > 0 {
		var ci webrtc.ICECandidateInit
		if err := json.Unmarshal(raw, &ci); err == nil && ci.Candidate != "" {
			return SignalInfo{Kind: SignalCandidate}
		}
		if err := json.Unmarshal(probe.Candidate, &ci); err == nil && ci.Candidate != "" {
			return SignalInfo{Kind: SignalCandidate}
		}
	}
	return SignalInfo{Kind: SignalUnknown}
}

func sdpKind(t webrtc.SDPType) SignalKind {
	switch t {
	case webrtc.SDPTypeOffer:
		return SignalOffer
	case webrtc.SDPTypeAnswer:
		return SignalAnswer
	case webrtc.SDPTypePranswer:
		return SignalPranswer
	case webrtc.SDPTypeRollback:
		return SignalRollback
	}
	return SignalUnknown
}
