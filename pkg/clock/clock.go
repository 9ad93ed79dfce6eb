// Package clock implements the per-process Lamport logical clock.
//
// From Lamport (1978), two implementation rules govern the clock:
//
//	IR1 (local or send event): Before the event, increment the clock.
//	IR2 (message receipt): On receiving a message with timestamp t,
//	     set the clock to max(own, t) and then increment it.
//
// The merge happens before the increment, so a receive always lands
// strictly above both the receiver's previous value and the sender's
// timestamp.
//
// Note: Clock is not goroutine-safe. Each simulated process owns exactly
// one Clock and is the only goroutine that ever touches it. A copy of the
// clock (a plain value) is what travels across channels.
package clock

// Clock is a Lamport logical clock tagged with the id of the process that
// owns it. Not goroutine-safe; see package doc.
type Clock struct {
	Owner int   `json:"owner"`
	TS    int64 `json:"ts"`
}

// New returns a clock for owner starting at timestamp 0.
func New(owner int) *Clock {
	return &Clock{Owner: owner}
}

// Tick implements IR1: increment the clock for a local step. Returns the
// new timestamp.
func (c *Clock) Tick() int64 {
	c.TS++
	return c.TS
}

// Receive implements IR2: merge the received timestamp, then increment.
// Returns max(own, received) + 1.
func (c *Clock) Receive(received int64) int64 {
	if received > c.TS {
		c.TS = received
	}
	c.TS++
	return c.TS
}

// Value returns the current timestamp without advancing it.
func (c *Clock) Value() int64 { return c.TS }

// Set forces the timestamp. Only used to seed a clock in tests.
func (c *Clock) Set(v int64) { c.TS = v }

// TotalOrderLess defines a deterministic total order over events.
// Event A at (tsA, ownerA) is "less" than event B at (tsB, ownerB) if:
//
//	tsA < tsB, or
//	tsA == tsB and ownerA < ownerB
//
// This is the standard Lamport total order. It is consistent with
// happened-before but orders concurrent events arbitrarily by owner.
func TotalOrderLess(tsA int64, ownerA int, tsB int64, ownerB int) bool {
	if tsA != tsB {
		return tsA < tsB
	}
	return ownerA < ownerB
}
