package client

import "github.com/nvim-rpc/go-client/msgpack"

// pendingSlot correlates one outstanding request with its eventual
// response. It is single-use: completeWithResponse or completeWithError
// closes done exactly once, broadcasting to the one goroutine waiting
// in Request's select — a closed channel rather than a raw sync.Cond,
// because it composes directly with context cancellation and
// time.After in a select statement.
type pendingSlot struct {
	done   chan struct{}
	result msgpack.Value
	errVal msgpack.Value
	err    error
}

func newPendingSlot() *pendingSlot {
	return &pendingSlot{done: make(chan struct{})}
}

// completeWithResponse fulfills the slot with a Response's error/result
// pair and wakes the waiter. Safe to call exactly once.
func (p *pendingSlot) completeWithResponse(errVal, result msgpack.Value) {
	p.errVal = errVal
	p.result = result
	close(p.done)
}

// completeWithError fails the slot outright (used when the connection
// tears down with requests still outstanding). Safe to call exactly
// once.
func (p *pendingSlot) completeWithError(err error) {
	p.err = err
	close(p.done)
}

// pendingTable tracks in-flight requests by msgid. Access is always
// under the client lock, so it carries no internal synchronization of
// its own.
type pendingTable struct {
	slots map[uint32]*pendingSlot
}

func newPendingTable() *pendingTable {
	return &pendingTable{slots: make(map[uint32]*pendingSlot)}
}

func (t *pendingTable) insert(msgid uint32, slot *pendingSlot) {
	t.slots[msgid] = slot
}

func (t *pendingTable) take(msgid uint32) (*pendingSlot, bool) {
	slot, ok := t.slots[msgid]
	if ok {
		delete(t.slots, msgid)
	}
	return slot, ok
}

func (t *pendingTable) remove(msgid uint32) {
	delete(t.slots, msgid)
}

// failAll completes every outstanding slot with err and empties the
// table, used on disconnect and on any connection-level I/O failure.
func (t *pendingTable) failAll(err error) {
	for msgid, slot := range t.slots {
		slot.completeWithError(err)
		delete(t.slots, msgid)
	}
}
