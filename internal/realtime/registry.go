// Package realtime tracks live client connections per user and fans
// neurofeedback events out to them.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/soaringjerry/Cortex/internal/metrics"
)

// Conn is a live duplex connection that can receive pushed frames.
type Conn interface {
	Send(payload []byte) error
	Open() bool
}

// DeliveryError reports a failed send to one connection. It is logged and
// counted, never returned to the caller of Broadcast.
type DeliveryError struct {
	UserID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to user %d: %v", e.UserID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// DeliveryReport summarizes one Broadcast call.
type DeliveryReport struct {
	Delivered int
	Skipped   int
	Failed    []*DeliveryError
}

type pushFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Registry maps user ids to their registered connections. Empty sets are
// removed so the map never grows with users that have gone away.
type Registry struct {
	mu      sync.RWMutex
	conns   map[int64]map[Conn]struct{}
	total   int
	metrics *metrics.Metrics
}

// NewRegistry returns an empty registry. m may be nil.
func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{conns: map[int64]map[Conn]struct{}{}, metrics: m}
}

// Register adds conn to userID's set. Registering the same pair twice is a no-op.
func (r *Registry) Register(userID int64, conn Conn) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	set, ok := r.conns[userID]
	if !ok {
		set = map[Conn]struct{}{}
		r.conns[userID] = set
	}
	if _, dup := set[conn]; !dup {
		set[conn] = struct{}{}
		r.total++
	}
	r.metrics.SetConnections(r.total)
	r.mu.Unlock()
}

// Unregister removes conn from userID's set, dropping the entry once empty.
func (r *Registry) Unregister(userID int64, conn Conn) {
	r.mu.Lock()
	set, ok := r.conns[userID]
	if ok {
		if _, present := set[conn]; present {
			delete(set, conn)
			r.total--
		}
		if len(set) == 0 {
			delete(r.conns, userID)
		}
	}
	r.metrics.SetConnections(r.total)
	r.mu.Unlock()
}

// Broadcast pushes {"type":"neurofeedback","data":event} to every open
// connection of userID. Users without connections get nothing; the event is
// not queued. A failing connection does not stop delivery to the others.
func (r *Registry) Broadcast(userID int64, event any) DeliveryReport {
	var report DeliveryReport
	targets := r.snapshot(userID)
	if len(targets) == 0 {
		return report
	}
	payload, err := json.Marshal(pushFrame{Type: "neurofeedback", Data: event})
	if err != nil {
		log.Printf("realtime: marshal event for user=%d: %v", userID, err)
		return report
	}
	for _, conn := range targets {
		if !conn.Open() {
			report.Skipped++
			continue
		}
		if err := conn.Send(payload); err != nil {
			if errors.Is(err, errConnClosed) {
				// closed after the Open check
				report.Skipped++
				continue
			}
			derr := &DeliveryError{UserID: userID, Err: err}
			log.Printf("realtime: %v", derr)
			report.Failed = append(report.Failed, derr)
			continue
		}
		report.Delivered++
	}
	r.metrics.Deliveries(metrics.OutcomeDelivered, report.Delivered)
	r.metrics.Deliveries(metrics.OutcomeSkipped, report.Skipped)
	r.metrics.Deliveries(metrics.OutcomeFailed, len(report.Failed))
	return report
}

// Connections reports how many connections userID has registered.
func (r *Registry) Connections(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

// Users reports how many users have at least one registered connection.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) snapshot(userID int64) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

var errConnClosed = errors.New("connection closed")
