package topology

import (
	"fmt"
	"strings"
)

// Message is one piece of traffic flowing through the topology.
type Message struct {
	ID       int
	Priority int
	Src      Address
	Dst      Address
	Payload  string

	// Trace records every device address visited, including source and
	// destination, in visit order; TraceString renders it colon-joined.
	Trace []Address
}

// NewMessage constructs a Message with its trace seeded at its source, as
// required when a message is first enqueued into its source machine's
// inbox (spec.md §4.7 `send msg`).
func NewMessage(id, priority int, src, dst Address, payload string) *Message {
	return &Message{
		ID:       id,
		Priority: priority,
		Src:      src.Canonical(),
		Dst:      dst.Canonical(),
		Payload:  payload,
		Trace:    []Address{src.Canonical()},
	}
}

// Hop appends addr to the trace, recording one more device the message has
// passed through or been handed off to.
func (m *Message) Hop(addr Address) {
	m.Trace = append(m.Trace, addr.Canonical())
}

// TraceString renders the trace as the colon-joined form used both in
// delivery log entries and in path-log lines.
func (m *Message) TraceString() string {
	parts := make([]string, len(m.Trace))
	for i, a := range m.Trace {
		parts[i] = string(a)
	}
	return strings.Join(parts, ":")
}

// PathLogLine renders the "id:hop:hop:...:hop" line appended to the path
// log on successful delivery (spec.md §6).
func (m *Message) PathLogLine() string {
	return fmt.Sprintf("%d:%s", m.ID, m.TraceString())
}

// RoutingField is one entry in a router's routing table: the next device to
// hand a message to in order to reach dest.
type RoutingField struct {
	Dest Address
	Next Address
}
