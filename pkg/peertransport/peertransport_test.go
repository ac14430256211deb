package peertransport

import (
	"encoding/json"
	"testing"

	"github.com/nwillc/raydist/pkg/peerwire"
	"github.com/nwillc/raydist/pkg/rlog"
	"github.com/nwillc/raydist/pkg/signaling"
)

type fakeSignaler struct {
	sent     []signaling.Message
	incoming chan signaling.Message
}

func newFakeSignaler() *fakeSignaler {
	return &fakeSignaler{incoming: make(chan signaling.Message, 8)}
}

func (f *fakeSignaler) Send(m signaling.Message) error {
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeSignaler) Incoming() <-chan signaling.Message { return f.incoming }

func TestDialSendsConnectionRequestWithOffer(t *testing.T) {
	sig := newFakeSignaler()
	peer, err := Dial("peer-1", sig, func(peerwire.Frame) {}, rlog.New())
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer peer.Close()
	close(sig.incoming)

	if len(sig.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sig.sent))
	}
	got := sig.sent[0]
	if got.Type != signaling.TypeConnectionRequest || got.ID != "peer-1" {
		t.Fatalf("got %+v, want a connection_request for peer-1", got)
	}
	var offer map[string]interface{}
	if err := json.Unmarshal(got.SessionInfo, &offer); err != nil {
		t.Fatalf("session info is not valid JSON: %v", err)
	}
	if offer["type"] != "offer" {
		t.Fatalf("offer type = %v, want \"offer\"", offer["type"])
	}
}

func TestCandidatePayloadRoundTrips(t *testing.T) {
	in := candidatePayload{Candidate: "candidate:1 1 UDP 1 127.0.0.1 9 typ host", SDPMLineIndex: 0, SDPMid: "0"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var out candidatePayload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}
