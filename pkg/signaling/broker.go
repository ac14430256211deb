// Package signaling implements the WebSocket rendezvous broker that pairs
// two peers under a shared session id and relays session descriptors and
// trickled ICE candidates between them, per spec §4.K.
package signaling

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/nwillc/raydist/pkg/rlog"
)

// MessageType discriminates the envelope carried over the socket.
type MessageType string

const (
	TypeConnectionRequest MessageType = "connection_request"
	TypePeerResponse      MessageType = "peer_response"
	TypeIncrementalInfo   MessageType = "incremental_info"
	TypeDone              MessageType = "done"
)

// Message is the JSON envelope exchanged over the signaling socket.
type Message struct {
	Type        MessageType     `json:"type"`
	ID          string          `json:"id"`
	SessionInfo json.RawMessage `json:"session_info,omitempty"`
	ExtraInfo   json.RawMessage `json:"extra_info,omitempty"`
}

// role identifies which side of a session a socket occupies.
type role int

const (
	roleUndecided role = iota
	roleFirst
	roleSecond
)

// peerConn pairs a websocket connection with a write mutex, since gorilla's
// connections are not safe for concurrent writes.
type peerConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *peerConn) writeJSON(v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(v)
}

// session holds the state for one rendezvous id: the first arrival, the
// second arrival (once connected), and incremental info buffered for
// whichever side has not yet arrived.
type session struct {
	mu sync.Mutex

	first  *peerConn
	second *peerConn

	firstSessionInfo  json.RawMessage
	secondSessionInfo json.RawMessage

	firstIncremental  []json.RawMessage
	secondIncremental []json.RawMessage
}

// Broker is the long-lived rendezvous service. Sessions are looked up and
// inserted under a single map mutex; once a session exists, its own mutex
// serializes further mutation, so lookups for unrelated ids never block on
// each other.
type Broker struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session

	log rlog.Logger
}

// NewBroker creates a broker that accepts connections from any origin, the
// way a bespoke signaling relay typically does.
func NewBroker(log rlog.Logger) *Broker {
	return &Broker{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
		log:      log,
	}
}

// ServeHTTP upgrades the connection and runs its read loop until the socket
// closes or a decoding/write error terminates it.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Printf("signaling: upgrade failed: %v\n", err)
		return
	}
	defer conn.Close()

	pc := &peerConn{conn: conn}
	state := roleUndecided
	var sess *session
	var id string

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case TypeConnectionRequest:
			if state != roleUndecided {
				continue
			}
			id = msg.ID
			sess, state = b.onConnectionRequest(id, pc, msg.SessionInfo)
			if sess == nil {
				// third request for this id: reject and close, without
				// notifying the already-connected peers.
				return
			}

		case TypePeerResponse:
			if sess == nil {
				continue
			}
			b.forwardPeerResponse(sess, state, id, msg.SessionInfo)

		case TypeIncrementalInfo:
			if sess == nil {
				continue
			}
			b.forwardIncremental(sess, state, id, msg.ExtraInfo)

		case TypeDone:
			if sess != nil {
				b.closeSession(id)
			}
			return

		default:
			b.log.Printf("signaling: unknown message type %q, dropping\n", msg.Type)
		}
	}
}

// onConnectionRequest assigns pc a role for id: First if no session exists
// yet, Second (replaying the first peer's buffered state) if exactly one
// does, or rejection if both roles are already taken.
func (b *Broker) onConnectionRequest(id string, pc *peerConn, sessionInfo json.RawMessage) (*session, role) {
	b.mu.Lock()
	sess, ok := b.sessions[id]
	if !ok {
		sess = &session{}
		b.sessions[id] = sess
	}
	b.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch {
	case sess.first == nil:
		sess.first = pc
		sess.firstSessionInfo = sessionInfo
		return sess, roleFirst

	case sess.second == nil:
		sess.second = pc
		sess.secondSessionInfo = sessionInfo

		// Forward the first peer's session info, then its buffered
		// incrementals, in order, before this call returns — guaranteeing
		// the second peer sees them in the same order they were sent.
		pc.writeJSON(Message{Type: TypeConnectionRequest, ID: id, SessionInfo: sess.firstSessionInfo})
		for _, extra := range sess.firstIncremental {
			pc.writeJSON(Message{Type: TypeIncrementalInfo, ID: id, ExtraInfo: extra})
		}
		return sess, roleSecond

	default:
		return nil, roleUndecided
	}
}

func (b *Broker) forwardPeerResponse(sess *session, self role, id string, sessionInfo json.RawMessage) {
	sess.mu.Lock()
	peer := b.peerOf(sess, self)
	sess.mu.Unlock()

	if peer != nil {
		peer.writeJSON(Message{Type: TypePeerResponse, ID: id, SessionInfo: sessionInfo})
	}
}

func (b *Broker) forwardIncremental(sess *session, self role, id string, extraInfo json.RawMessage) {
	sess.mu.Lock()
	peer := b.peerOf(sess, self)
	if peer == nil {
		// the other side hasn't arrived yet; buffer under the sender's own
		// slot so onConnectionRequest's replay (which reads firstIncremental
		// for the first peer) finds it later
		if self == roleFirst {
			sess.firstIncremental = append(sess.firstIncremental, extraInfo)
		} else {
			sess.secondIncremental = append(sess.secondIncremental, extraInfo)
		}
	}
	sess.mu.Unlock()

	if peer != nil {
		peer.writeJSON(Message{Type: TypeIncrementalInfo, ID: id, ExtraInfo: extraInfo})
	}
}

// peerOf returns the other side's connection, or nil if it hasn't arrived.
// Caller must hold sess.mu.
func (b *Broker) peerOf(sess *session, self role) *peerConn {
	if self == roleFirst {
		return sess.second
	}
	return sess.first
}

func (b *Broker) closeSession(id string) {
	b.mu.Lock()
	delete(b.sessions, id)
	b.mu.Unlock()
}
