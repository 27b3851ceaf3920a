package rtc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dkeye/meshcall/internal/config"
	"github.com/pion/webrtc/v4"
)

// ForwardingCodec is the wire view of one codec in the forwarding block.
type ForwardingCodec struct {
	Kind        string `json:"kind"`
	MimeType    string `json:"mimeType"`
	ClockRate   uint32 `json:"clockRate"`
	Channels    uint16 `json:"channels,omitempty"`
	PayloadType uint8  `json:"payloadType"`
	SDPFmtpLine string `json:"sdpFmtpLine,omitempty"`
}

// MediaConfig is what clients and an external forwarding unit need to know.
type MediaConfig struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
	Forwarding struct {
		RTCMinPort uint16            `json:"rtcMinPort"`
		RTCMaxPort uint16            `json:"rtcMaxPort"`
		LogLevel   string            `json:"logLevel"`
		Codecs     []ForwardingCodec `json:"codecs"`
	} `json:"forwarding"`
}

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// WebRTCConfig converts the configured ICE servers, falling back to the
// public STUN default when none are set.
func WebRTCConfig(cfg *config.Config) webrtc.Configuration {
	if len(cfg.ICEServers) == 0 {
		return DefaultWebRTCConfig()
	}
	out := webrtc.Configuration{}
	for _, s := range cfg.ICEServers {
		ice := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			ice.Credential = s.Credential
		}
		out.ICEServers = append(out.ICEServers, ice)
	}
	return out
}

// NewMediaConfig validates the forwarding codec block by registering it with
// a pion MediaEngine and returns the publishable view.
func NewMediaConfig(cfg *config.Config) (*MediaConfig, error) {
	m := &webrtc.MediaEngine{}
	mc := &MediaConfig{ICEServers: WebRTCConfig(cfg).ICEServers}
	mc.Forwarding.RTCMinPort = cfg.Forwarding.RTCMinPort
	mc.Forwarding.RTCMaxPort = cfg.Forwarding.RTCMaxPort
	mc.Forwarding.LogLevel = cfg.Forwarding.LogLevel

	for _, c := range cfg.Forwarding.Codecs {
		kind := webrtc.NewRTPCodecType(c.Kind)
		if kind == 0 {
			return nil, fmt.Errorf("codec %s: unknown kind %q", c.MimeType, c.Kind)
		}
		params := webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{
				MimeType:    c.MimeType,
				ClockRate:   c.ClockRate,
				Channels:    c.Channels,
				SDPFmtpLine: fmtpLine(c.Parameters),
			},
			PayloadType: webrtc.PayloadType(c.PayloadType),
		}
		if err := m.RegisterCodec(params, kind); err != nil {
			return nil, fmt.Errorf("register codec %s: %w", c.MimeType, err)
		}
		mc.Forwarding.Codecs = append(mc.Forwarding.Codecs, ForwardingCodec{
			Kind:        kind.String(),
			MimeType:    params.MimeType,
			ClockRate:   params.ClockRate,
			Channels:    params.Channels,
			PayloadType: uint8(params.PayloadType),
			SDPFmtpLine: params.SDPFmtpLine,
		})
	}
	return mc, nil
}

func fmtpLine(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, ";")
}
