package session

import (
	"sync"
	"time"

	"github.com/meshcore-go/companion/codec"
)

// binaryRequestEntry correlates a binaryResponse push back to the
// request that caused it, once the response's Tag matches. The wire
// itself only tells us the request type (see codec.BinaryResponse);
// the originating public key has to come from this side table.
type binaryRequestEntry struct {
	pubkeyPrefix [codec.PublicKeyPrefix]byte
	reqType      codec.BinaryRequestType
	deadline     time.Time
}

// pendingTable is session's single-writer bookkeeping: one in-flight
// solicited command at a time (the wire protocol allows no more), plus
// two independent correlation tables for asynchronous pushes that
// arrive after their triggering command already resolved: ack tags
// (messageSent -> later ack push) and binary-request tags
// (binaryRequest -> later binaryResponse push).
type pendingTable struct {
	mu sync.Mutex

	current   chan codec.Event // nil when no command is in flight
	statsType codec.StatsType  // valid only while current != nil and the in-flight command was getStats

	acks          map[codec.AckTag]chan codec.Event
	binaryReqs    map[codec.AckTag]binaryRequestEntry
	binaryWaiters map[codec.AckTag]chan codec.Event
}

func newPendingTable() *pendingTable {
	return &pendingTable{
		acks:          make(map[codec.AckTag]chan codec.Event),
		binaryReqs:    make(map[codec.AckTag]binaryRequestEntry),
		binaryWaiters: make(map[codec.AckTag]chan codec.Event),
	}
}

// beginCommand registers a new in-flight command and returns the
// channel its eventual reply will be delivered to. It fails if a
// command is already in flight: this protocol never pipelines.
func (p *pendingTable) beginCommand() (chan codec.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		return nil, newLifecycleError("a command is already in flight")
	}
	ch := make(chan codec.Event, 1)
	p.current = ch
	return ch, nil
}

// beginStatsCommand is beginCommand specialized for getStats, which
// needs statsType remembered so the eventual RespStats reply can be
// resolved through codec.ParseStats.
func (p *pendingTable) beginStatsCommand(statsType codec.StatsType) (chan codec.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		return nil, newLifecycleError("a command is already in flight")
	}
	ch := make(chan codec.Event, 1)
	p.current = ch
	p.statsType = statsType
	return ch, nil
}

// resolveCurrent delivers ev to the in-flight command waiter, if any,
// and clears the slot. It reports whether a waiter was present.
func (p *pendingTable) resolveCurrent(ev codec.Event) bool {
	p.mu.Lock()
	ch := p.current
	p.current = nil
	p.mu.Unlock()
	if ch == nil {
		return false
	}
	ch <- ev
	return true
}

// pendingStatsType returns the statsType recorded by beginStatsCommand
// for the currently in-flight command, if any.
func (p *pendingTable) pendingStatsType() (codec.StatsType, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return 0, false
	}
	return p.statsType, true
}

// abandonCurrent clears the in-flight slot without delivering a
// result, used when a command's own timeout fires first.
func (p *pendingTable) abandonCurrent() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
}

// trackAck registers tag as awaiting an ack push, returning the
// channel the ack will be delivered to.
func (p *pendingTable) trackAck(tag codec.AckTag) chan codec.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan codec.Event, 1)
	p.acks[tag] = ch
	return ch
}

// resolveAck delivers ev to the waiter tracking tag, if any, and
// forgets the tag either way (an ack is only ever delivered once).
func (p *pendingTable) resolveAck(tag codec.AckTag, ev codec.Event) bool {
	p.mu.Lock()
	ch, ok := p.acks[tag]
	delete(p.acks, tag)
	p.mu.Unlock()
	if !ok {
		return false
	}
	ch <- ev
	return true
}

// abandonAck stops tracking tag without delivering anything, used
// when the ack's own deadline elapses first.
func (p *pendingTable) abandonAck(tag codec.AckTag) {
	p.mu.Lock()
	delete(p.acks, tag)
	p.mu.Unlock()
}

// trackBinaryRequest remembers which public key and request type a
// binaryRequest's tag refers to, so a later binaryResponse carrying
// the same tag can be enriched with the originating key.
func (p *pendingTable) trackBinaryRequest(tag codec.AckTag, pubkeyPrefix [codec.PublicKeyPrefix]byte, reqType codec.BinaryRequestType, deadline time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.binaryReqs[tag] = binaryRequestEntry{pubkeyPrefix: pubkeyPrefix, reqType: reqType, deadline: deadline}
}

// resolveBinaryRequest looks up and forgets the correlation entry for
// tag.
func (p *pendingTable) resolveBinaryRequest(tag codec.AckTag) (binaryRequestEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.binaryReqs[tag]
	if ok {
		delete(p.binaryReqs, tag)
	}
	return e, ok
}

// sweepExpiredBinaryRequests discards correlation entries past their
// deadline so the table doesn't grow unbounded when a binaryResponse
// never arrives.
func (p *pendingTable) sweepExpiredBinaryRequests(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for tag, e := range p.binaryReqs {
		if now.After(e.deadline) {
			delete(p.binaryReqs, tag)
		}
	}
}

// trackBinaryWaiter registers tag as awaiting a binaryResponse push,
// returning the channel it will be delivered to. This is distinct from
// binaryReqs: that table survives only to enrich the eventual push with
// the originating public key, while this one is the caller's private
// rendezvous channel for SendBinaryRequest.
func (p *pendingTable) trackBinaryWaiter(tag codec.AckTag) chan codec.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan codec.Event, 1)
	p.binaryWaiters[tag] = ch
	return ch
}

// resolveBinaryWaiter delivers ev to the waiter tracking tag, if any.
func (p *pendingTable) resolveBinaryWaiter(tag codec.AckTag, ev codec.Event) bool {
	p.mu.Lock()
	ch, ok := p.binaryWaiters[tag]
	delete(p.binaryWaiters, tag)
	p.mu.Unlock()
	if !ok {
		return false
	}
	ch <- ev
	return true
}

// abandonBinaryWaiter stops tracking tag without delivering anything,
// used when SendBinaryRequest's own deadline elapses first.
func (p *pendingTable) abandonBinaryWaiter(tag codec.AckTag) {
	p.mu.Lock()
	delete(p.binaryWaiters, tag)
	p.mu.Unlock()
}

// failAllAcks delivers ev to every outstanding ack waiter and clears
// the table, used when the transport closes out from under the session.
func (p *pendingTable) failAllAcks(ev codec.Event) {
	p.mu.Lock()
	waiters := p.acks
	p.acks = make(map[codec.AckTag]chan codec.Event)
	p.mu.Unlock()
	for _, ch := range waiters {
		ch <- ev
	}
}

// failAllBinaryWaiters delivers ev to every outstanding binary-response
// waiter and clears the table.
func (p *pendingTable) failAllBinaryWaiters(ev codec.Event) {
	p.mu.Lock()
	waiters := p.binaryWaiters
	p.binaryWaiters = make(map[codec.AckTag]chan codec.Event)
	p.mu.Unlock()
	for _, ch := range waiters {
		ch <- ev
	}
}
