// Package steal implements the work-stealing proxy that asks peers for jobs
// when the local job pool runs dry, per spec §4.J.
package steal

import "time"

// rateLimit is the minimum interval between successive StealWork broadcasts.
const rateLimit = 300 * time.Millisecond

// Proxy tracks the in-flight state of a single coordinator's steal requests.
type Proxy struct {
	RequestInFlight bool
	LastRequestSent time.Time
}

// New creates a proxy with no request outstanding.
func New() *Proxy {
	return &Proxy{}
}

// MaybeSteal reports whether a StealWork{num_jobs} broadcast should be sent
// now, given the current dispatcher tick's state, and marks a request as
// in flight if so. The caller is responsible for actually broadcasting.
func (p *Proxy) MaybeSteal(now time.Time, poolEmpty bool, peerCount int, numWorkers int) bool {
	if !poolEmpty || peerCount == 0 || p.RequestInFlight {
		return false
	}
	if !p.LastRequestSent.IsZero() && now.Sub(p.LastRequestSent) < rateLimit {
		return false
	}
	p.RequestInFlight = true
	p.LastRequestSent = now
	return true
}

// OnJobFrameReceived clears the in-flight flag when any Job frame arrives,
// whether or not it satisfies this proxy's own request.
func (p *Proxy) OnJobFrameReceived() {
	p.RequestInFlight = false
}

// OnPeerConnected clears the in-flight flag as a coarse heuristic: a newly
// connected peer may bring fresh work, so the backoff is forgiven.
func (p *Proxy) OnPeerConnected() {
	p.RequestInFlight = false
}
