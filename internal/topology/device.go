package topology

import "github.com/iti/netsim/internal/container"

// Device is the capability set shared by every network node: every device
// owns an outbound FIFO and can be asked for its address and kind. The two
// variants (Machine, Router) differ in inbound-queue discipline and
// per-kind routing state, matching the teacher's device/interface split in
// net.go generalized to an exhaustive sum type (no downcasts) per the
// tagged-variant guidance in spec.md's DESIGN NOTES.
type Device interface {
	Address() Address
	Kind() DeviceKind
}

// FIFOQueue is a first-in-first-out queue of messages, used for every
// device's outbound link and for a machine's inbound mailbox.
type FIFOQueue struct {
	items []*Message
}

// NewFIFOQueue constructs an empty FIFOQueue.
func NewFIFOQueue() *FIFOQueue {
	return &FIFOQueue{}
}

// Enqueue appends msg to the tail of the queue.
func (q *FIFOQueue) Enqueue(msg *Message) {
	q.items = append(q.items, msg)
}

// Front returns the head of the queue without removing it.
func (q *FIFOQueue) Front() (*Message, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Dequeue removes and returns the head of the queue.
func (q *FIFOQueue) Dequeue() (*Message, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return msg, true
}

// Len reports how many messages are queued.
func (q *FIFOQueue) Len() int {
	return len(q.items)
}

// Empty reports whether the queue holds no messages.
func (q *FIFOQueue) Empty() bool {
	return len(q.items) == 0
}

// prioritized pairs a queued message with a monotonic sequence number so
// that messages of equal priority are served in the order they arrived,
// keeping the router inbox's tie-break deterministic.
type prioritized struct {
	msg *Message
	seq int
}

// PriorityInbox is a router's inbound mailbox: a max-heap on Message
// priority (higher numeric priority served first), ties broken by arrival
// order.
type PriorityInbox struct {
	heap   *container.Heap[prioritized]
	nextSeq int
}

// NewPriorityInbox constructs an empty PriorityInbox.
func NewPriorityInbox() *PriorityInbox {
	less := func(a, b prioritized) bool {
		if a.msg.Priority != b.msg.Priority {
			return a.msg.Priority > b.msg.Priority
		}
		return a.seq < b.seq
	}
	return &PriorityInbox{heap: container.NewHeap[prioritized](less)}
}

// Enqueue adds msg to the inbox.
func (p *PriorityInbox) Enqueue(msg *Message) {
	p.heap.Push(prioritized{msg: msg, seq: p.nextSeq})
	p.nextSeq++
}

// Front returns the highest-priority message without removing it.
func (p *PriorityInbox) Front() (*Message, bool) {
	top, ok := p.heap.Front()
	if !ok {
		return nil, false
	}
	return top.msg, true
}

// Dequeue removes and returns the highest-priority message.
func (p *PriorityInbox) Dequeue() (*Message, bool) {
	top, ok := p.heap.Pop()
	if !ok {
		return nil, false
	}
	return top.msg, true
}

// Len reports how many messages are queued.
func (p *PriorityInbox) Len() int {
	return p.heap.Len()
}

// Empty reports whether the inbox holds no messages.
func (p *PriorityInbox) Empty() bool {
	return p.heap.Empty()
}

// Machine is a host endpoint: it originates and terminates messages and is
// attached to exactly one router once planning has run.
type Machine struct {
	Addr        Address
	RouterAddr  Address // populated by the planner; empty before first Plan
	Inbound     *FIFOQueue
	Outbound    *FIFOQueue
}

// NewMachine constructs a Machine with empty queues and no attached
// router.
func NewMachine(addr Address) *Machine {
	return &Machine{
		Addr:     addr.Canonical(),
		Inbound:  NewFIFOQueue(),
		Outbound: NewFIFOQueue(),
	}
}

func (m *Machine) Address() Address  { return m.Addr }
func (m *Machine) Kind() DeviceKind  { return MachineKind }

// Router is a forwarding node: it schedules inbound messages by priority
// and consults a routing table to decide the next hop for each.
type Router struct {
	Addr     Address
	Inbound  *PriorityInbox
	Outbound *FIFOQueue
	Table    RoutingTable
}

// NewRouter constructs a Router with empty queues and an empty table in
// the given representation.
func NewRouter(addr Address, kind TableKind) *Router {
	return &Router{
		Addr:     addr.Canonical(),
		Inbound:  NewPriorityInbox(),
		Outbound: NewFIFOQueue(),
		Table:    NewRoutingTable(kind),
	}
}

func (r *Router) Address() Address  { return r.Addr }
func (r *Router) Kind() DeviceKind  { return RouterKind }
