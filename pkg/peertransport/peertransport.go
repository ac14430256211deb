// Package peertransport establishes a direct WebRTC data channel between
// two renderer instances, using pkg/signaling only to exchange the session
// descriptor and trickled ICE candidates, per spec §4.L.
package peertransport

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/nwillc/raydist/pkg/peerwire"
	"github.com/nwillc/raydist/pkg/rlog"
	"github.com/nwillc/raydist/pkg/signaling"
)

// State mirrors the subset of webrtc.PeerConnectionState the coordinator
// cares about.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateClosed
)

// candidatePayload is the extra_info body carried by trickled ICE frames,
// matching the shape pion's OnICECandidate callback produces.
type candidatePayload struct {
	Candidate     string `json:"candidate"`
	SDPMLineIndex uint16 `json:"sdp_m_line_index"`
	SDPMid        string `json:"sdp_mid"`
}

// Signaler is the narrow contract peertransport needs from a signaling
// connection: sending an envelope and a channel of received envelopes.
type Signaler interface {
	Send(signaling.Message) error
	Incoming() <-chan signaling.Message
}

// Peer is one end of a direct WebRTC data-channel connection to another
// renderer instance, carrying spec §4.I peerwire frames once connected.
type Peer struct {
	ID    string
	State State

	pc      *webrtc.PeerConnection
	channel *webrtc.DataChannel

	mu        sync.Mutex
	connected chan struct{}
	onFrame   func(peerwire.Frame)
	log       rlog.Logger
}

// Dial creates the local PeerConnection and data channel, starts trickling
// ICE candidates to sig, and returns once the local offer has been sent.
// Use WaitConnected to block until the channel opens.
func Dial(id string, sig Signaler, onFrame func(peerwire.Frame), log rlog.Logger) (*Peer, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, err
	}

	p := &Peer{ID: id, pc: pc, connected: make(chan struct{}), onFrame: onFrame, log: log}

	dc, err := pc.CreateDataChannel("raydist", nil)
	if err != nil {
		return nil, err
	}
	p.wireDataChannel(dc)
	p.wireICE(sig)

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}

	sdpJSON, err := json.Marshal(offer)
	if err != nil {
		return nil, err
	}
	if err := sig.Send(signaling.Message{Type: signaling.TypeConnectionRequest, ID: id, SessionInfo: sdpJSON}); err != nil {
		return nil, err
	}

	go p.readSignaling(sig)
	return p, nil
}

// Accept mirrors Dial for the answering side: it returns immediately, and a
// background goroutine answers the incoming offer received via sig.
func Accept(id string, sig Signaler, onFrame func(peerwire.Frame), log rlog.Logger) (*Peer, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, err
	}

	p := &Peer{ID: id, pc: pc, connected: make(chan struct{}), onFrame: onFrame, log: log}

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		p.wireDataChannel(dc)
	})
	p.wireICE(sig)

	go p.readSignaling(sig)
	return p, nil
}

func (p *Peer) wireDataChannel(dc *webrtc.DataChannel) {
	p.channel = dc
	dc.OnOpen(func() {
		p.mu.Lock()
		p.State = StateConnected
		p.mu.Unlock()
		close(p.connected)
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if msg.IsString {
			return
		}
		frame, err := peerwire.ReadFrame(bytes.NewReader(msg.Data))
		if err != nil {
			p.log.Printf("peertransport: dropping malformed frame from %s: %v\n", p.ID, err)
			return
		}
		if p.onFrame != nil {
			p.onFrame(frame)
		}
	})
}

func (p *Peer) wireICE(sig Signaler) {
	p.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		init := c.ToJSON()
		payload := candidatePayload{Candidate: init.Candidate}
		if init.SDPMLineIndex != nil {
			payload.SDPMLineIndex = *init.SDPMLineIndex
		}
		if init.SDPMid != nil {
			payload.SDPMid = *init.SDPMid
		}
		extra, err := json.Marshal(payload)
		if err != nil {
			return
		}
		sig.Send(signaling.Message{Type: signaling.TypeIncrementalInfo, ID: p.ID, ExtraInfo: extra})
	})
}

func (p *Peer) readSignaling(sig Signaler) {
	for msg := range sig.Incoming() {
		switch msg.Type {
		case signaling.TypeConnectionRequest:
			var offer webrtc.SessionDescription
			if err := json.Unmarshal(msg.SessionInfo, &offer); err != nil {
				continue
			}
			if err := p.pc.SetRemoteDescription(offer); err != nil {
				p.log.Printf("peertransport: SetRemoteDescription(offer) failed: %v\n", err)
				continue
			}
			answer, err := p.pc.CreateAnswer(nil)
			if err != nil {
				continue
			}
			if err := p.pc.SetLocalDescription(answer); err != nil {
				continue
			}
			answerJSON, _ := json.Marshal(answer)
			sig.Send(signaling.Message{Type: signaling.TypePeerResponse, ID: p.ID, SessionInfo: answerJSON})

		case signaling.TypePeerResponse:
			var answer webrtc.SessionDescription
			if err := json.Unmarshal(msg.SessionInfo, &answer); err != nil {
				continue
			}
			if err := p.pc.SetRemoteDescription(answer); err != nil {
				p.log.Printf("peertransport: SetRemoteDescription(answer) failed: %v\n", err)
			}

		case signaling.TypeIncrementalInfo:
			var payload candidatePayload
			if err := json.Unmarshal(msg.ExtraInfo, &payload); err != nil {
				continue
			}
			mLineIndex := payload.SDPMLineIndex
			init := webrtc.ICECandidateInit{
				Candidate:     payload.Candidate,
				SDPMid:        &payload.SDPMid,
				SDPMLineIndex: &mLineIndex,
			}
			if err := p.pc.AddICECandidate(init); err != nil {
				p.log.Printf("peertransport: AddICECandidate failed: %v\n", err)
			}
		}
	}
}

// WaitConnected returns a channel that is closed once the data channel
// reports open.
func (p *Peer) WaitConnected() <-chan struct{} { return p.connected }

// SendRenderedPart frames and writes a RenderedPart message to the peer.
func (p *Peer) SendRenderedPart(part peerwire.RenderedPart) error {
	var buf bytes.Buffer
	if err := peerwire.WriteRenderedPart(&buf, part); err != nil {
		return err
	}
	return p.channel.Send(buf.Bytes())
}

// SendStealWork frames and writes a StealWork message to the peer.
func (p *Peer) SendStealWork(s peerwire.StealWork) error {
	var buf bytes.Buffer
	if err := peerwire.WriteStealWork(&buf, s); err != nil {
		return err
	}
	return p.channel.Send(buf.Bytes())
}

// SendJob frames and writes a Job message to the peer.
func (p *Peer) SendJob(j peerwire.Job) error {
	var buf bytes.Buffer
	if err := peerwire.WriteJob(&buf, j); err != nil {
		return err
	}
	return p.channel.Send(buf.Bytes())
}

// SendRenderControl frames and writes a RenderControl message to the peer.
func (p *Peer) SendRenderControl(c peerwire.RenderControl) error {
	var buf bytes.Buffer
	if err := peerwire.WriteRenderControl(&buf, c); err != nil {
		return err
	}
	return p.channel.Send(buf.Bytes())
}

// Close tears down the peer connection.
func (p *Peer) Close() error {
	p.mu.Lock()
	p.State = StateClosed
	p.mu.Unlock()
	return p.pc.Close()
}
