// Package webrtc negotiates peer connections whose "pointer" data channel carries input frames.
package webrtc

import (
	"fmt"
	"strings"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v3"
)

// PointerLabel is the data channel label that carries pointer frames.
const PointerLabel = "pointer"

// PeerFactory creates peer connections sharing one configured API.
type PeerFactory struct {
	api    *webrtc.API
	config webrtc.Configuration
}

// FactoryOption adjusts ICE settings shared by every peer of a factory.
type FactoryOption func(*webrtc.SettingEngine)

// WithLoopbackCandidates gathers 127.0.0.1 host candidates, letting two peers on the same
// machine connect without a usable LAN interface.
func WithLoopbackCandidates() FactoryOption {
	return func(se *webrtc.SettingEngine) {
		se.SetIncludeLoopbackCandidate(true)
		se.SetNetworkTypes([]webrtc.NetworkType{webrtc.NetworkTypeUDP4})
	}
}

// NewPeerFactory initializes the API with default codecs and interceptors. iceServers holds STUN
// or TURN URLs; empty entries are ignored.
func NewPeerFactory(iceServers []string, opts ...FactoryOption) (*PeerFactory, error) {
	media := &webrtc.MediaEngine{}
	if err := media.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register codecs: %w", err)
	}

	interceptors := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(media, interceptors); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}

	var settings webrtc.SettingEngine
	for _, opt := range opts {
		opt(&settings)
	}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(media),
		webrtc.WithInterceptorRegistry(interceptors),
		webrtc.WithSettingEngine(settings),
	)

	return &PeerFactory{api: api, config: configuration(iceServers)}, nil
}

// NewPeer creates a peer connection. The caller owns it and must close it.
func (f *PeerFactory) NewPeer() (*webrtc.PeerConnection, error) {
	peer, err := f.api.NewPeerConnection(f.config)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	return peer, nil
}

// ICEServers returns the configured server URLs.
func (f *PeerFactory) ICEServers() []string {
	var out []string
	for _, s := range f.config.ICEServers {
		out = append(out, s.URLs...)
	}
	return out
}

// configuration builds the peer configuration from ICE server URLs.
func configuration(urls []string) webrtc.Configuration {
	var cfg webrtc.Configuration
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		cfg.ICEServers = append(cfg.ICEServers, webrtc.ICEServer{URLs: []string{u}})
	}
	return cfg
}
