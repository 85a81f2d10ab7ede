// Package session multiplexes a single MeshCore companion-radio
// connection: one in-flight command at a time, ack correlation for
// sent messages, and push-event routing to subscribers, all driven by
// a single reader goroutine per the wire protocol's single-writer,
// many-reader discipline.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meshcore-go/companion/codec"
	"github.com/meshcore-go/companion/transport"
)

// Session owns a Transport and coordinates every command, ack, and
// push event flowing over it. Reconnection is out of scope: a fresh
// Session (and a fresh appStart) is required after any disconnect —
// the wire protocol's handshake is not transparently resumable.
type Session struct {
	cfg       config
	transport transport.Transport
	pending   *pendingTable

	writeMu sync.Mutex // serializes outbound Send calls

	stateMu sync.Mutex
	state   codec.ConnectionState
	started bool // set by the first Start call; guarded by stateMu

	subMu sync.Mutex
	subs  []chan codec.Event

	done chan struct{} // closed once the receive loop exits
}

// New constructs a Session around an already-constructed Transport.
// The transport need not be connected yet; Start will use it.
func New(t transport.Transport, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Session{
		cfg:       cfg,
		transport: t,
		pending:   newPendingTable(),
		state:     codec.StateDisconnected,
		done:      make(chan struct{}),
	}
}

// Start runs the appStart handshake and launches the receive loop. It
// blocks until the radio's selfInfo reply arrives, the connect timeout
// elapses, or ctx is cancelled. Start must be called exactly once.
func (s *Session) Start(ctx context.Context, clientID string) (*codec.SelfInfo, error) {
	s.stateMu.Lock()
	started := s.started
	s.started = true
	s.stateMu.Unlock()
	if started || !s.transitionState(codec.StateDisconnected, codec.StateConnecting) {
		return nil, newLifecycleError("Start called more than once")
	}

	go s.runReceiveLoop()

	connectCtx, cancel := context.WithTimeout(ctx, s.cfg.connectTimeout)
	defer cancel()

	s.setState(codec.StateConnected, nil)

	ev, err := s.SendAndAwait(connectCtx, codec.BuildAppStart(clientID))
	if err != nil {
		s.setState(codec.StateDisconnected, err)
		return nil, err
	}
	if ev.SelfInfo == nil {
		err := newProtocolError("appStart reply was not selfInfo")
		s.setState(codec.StateDisconnected, err)
		return nil, err
	}

	s.setState(codec.StateReady, nil)
	return ev.SelfInfo, nil
}

// Events returns a channel of push notifications and lifecycle events.
// Each call to Events registers a new, independently-backpressured
// subscriber; callers that stop reading will see old events silently
// replaced by QueueOverflow diagnostics rather than block the session.
func (s *Session) Events() <-chan codec.Event {
	return s.subscribe()
}

func (s *Session) subscribe() chan codec.Event {
	ch := make(chan codec.Event, eventQueueCapacity)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

// unsubscribe removes ch from the fan-out list. It does not close ch,
// since closeSubscribers (run once, at shutdown) owns that.
func (s *Session) unsubscribe(ch chan codec.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for i, c := range s.subs {
		if c == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Close releases the underlying transport and ends every subscriber's
// stream.
func (s *Session) Close() error {
	err := s.transport.Close()
	<-s.done
	return err
}

// SendAndAwait writes frame and suspends the caller until the single
// pending-command slot resolves, the command timeout elapses, or ctx
// is cancelled. Cancellation never orphans the write: the frame has
// already reached the transport (or failed to) before this function
// can return.
func (s *Session) SendAndAwait(ctx context.Context, frame []byte) (codec.Event, error) {
	ch, err := s.pending.beginCommand()
	if err != nil {
		return codec.Event{}, err
	}
	return s.sendAndWait(ctx, frame, ch, func() { s.pending.abandonCurrent() })
}

// sendAndWaitStats is SendAndAwait specialized for getStats, which
// resolves through codec.ParseStats rather than codec.Parse's default
// handling of RespStats.
func (s *Session) sendAndWaitStats(ctx context.Context, frame []byte, statsType codec.StatsType) (codec.Event, error) {
	ch, err := s.pending.beginStatsCommand(statsType)
	if err != nil {
		return codec.Event{}, err
	}
	ev, err := s.sendAndWait(ctx, frame, ch, func() { s.pending.abandonCurrent() })
	if err != nil {
		return ev, err
	}
	if ev.Code == codec.RespStats {
		resolved, perr := codec.ParseStats(ev.Raw, statsType)
		if perr != nil {
			return ev, newProtocolError(perr.Error())
		}
		return resolved, nil
	}
	return ev, nil
}

func (s *Session) sendAndWait(ctx context.Context, frame []byte, resultCh chan codec.Event, abandon func()) (codec.Event, error) {
	if st := s.State(); st != codec.StateConnected && st != codec.StateReady {
		abandon()
		return codec.Event{}, newLifecycleError("session is not started or has disconnected")
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.sendTimeout)
	defer cancel()
	if err := s.write(sendCtx, frame); err != nil {
		abandon()
		return codec.Event{}, err
	}

	timeout := time.NewTimer(s.cfg.commandTimeout)
	defer timeout.Stop()

	select {
	case ev := <-resultCh:
		if ev.ParseFailure != nil {
			return ev, newProtocolError(ev.ParseFailure.Reason)
		}
		if ev.Code == codec.RespError {
			return ev, newCommandError("radio returned an error response", nil)
		}
		return ev, nil
	case <-timeout.C:
		abandon()
		return codec.Event{}, newCommandError("timed out waiting for a reply", nil)
	case <-ctx.Done():
		abandon()
		return codec.Event{}, newCommandError("cancelled", ctx.Err())
	}
}

// AckOutcome is the resolved result of SendMessage: the radio accepted
// the message (messageSent) and, if waited for, a mesh node eventually
// acknowledged it.
type AckOutcome struct {
	ExpectedAck codec.AckTag
	Acked       bool
}

// SendMessage sends a text message and waits first for the radio's
// messageSent acceptance, then for the ack push confirming delivery,
// bounded by the firmware's suggested timeout (or the configured ack
// timeout if the firmware suggested none).
func (s *Session) SendMessage(ctx context.Context, destPrefix [codec.PublicKeyPrefix]byte, text string, ts uint32, attempt uint8) (AckOutcome, error) {
	frame := codec.BuildSendMessage(destPrefix, text, ts, attempt)
	ev, err := s.SendAndAwait(ctx, frame)
	if err != nil {
		return AckOutcome{}, err
	}
	if ev.MessageSent == nil {
		return AckOutcome{}, newProtocolError("sendMessage reply was not messageSent")
	}

	tag := ev.MessageSent.ExpectedAck
	ackCh := s.pending.trackAck(tag)

	ackTimeout := s.cfg.ackTimeout
	if ev.MessageSent.SuggestedTimeoutMs > 0 {
		ackTimeout = time.Duration(ev.MessageSent.SuggestedTimeoutMs) * time.Millisecond
	}
	timer := time.NewTimer(ackTimeout)
	defer timer.Stop()

	select {
	case <-ackCh:
		return AckOutcome{ExpectedAck: tag, Acked: true}, nil
	case <-timer.C:
		s.pending.abandonAck(tag)
		return AckOutcome{ExpectedAck: tag}, newAckError("no ack received within the suggested timeout")
	case <-ctx.Done():
		s.pending.abandonAck(tag)
		return AckOutcome{ExpectedAck: tag}, newAckError("cancelled")
	}
}

// SendBinaryRequest issues a binaryRequest and waits for both the
// radio's messageSent acceptance and the eventual binaryResponse push,
// which the session correlates back to pubkey via the ack tag.
func (s *Session) SendBinaryRequest(ctx context.Context, pubkey [codec.PublicKeySize]byte, reqType codec.BinaryRequestType, payload []byte) (*codec.BinaryResponse, error) {
	frame := codec.BuildBinaryRequest(pubkey, reqType, payload)
	ev, err := s.SendAndAwait(ctx, frame)
	if err != nil {
		return nil, err
	}
	if ev.MessageSent == nil {
		return nil, newProtocolError("binaryRequest reply was not messageSent")
	}

	tag := ev.MessageSent.ExpectedAck
	var prefix [codec.PublicKeyPrefix]byte
	copy(prefix[:], pubkey[:codec.PublicKeyPrefix])

	deadline := time.Now().Add(s.cfg.ackTimeout)
	if ev.MessageSent.SuggestedTimeoutMs > 0 {
		deadline = time.Now().Add(time.Duration(ev.MessageSent.SuggestedTimeoutMs) * time.Millisecond)
	}
	s.pending.trackBinaryRequest(tag, prefix, reqType, deadline)
	waitCh := s.pending.trackBinaryWaiter(tag)

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case resolved := <-waitCh:
		return resolved.BinaryResponse, nil
	case <-timer.C:
		s.pending.abandonBinaryWaiter(tag)
		return nil, newAckError("no binaryResponse received within the suggested timeout")
	case <-ctx.Done():
		s.pending.abandonBinaryWaiter(tag)
		return nil, newAckError("cancelled")
	}
}

// GetStats issues getStats and resolves the reply's otherwise
// ambiguous shape using the requested StatsType.
func (s *Session) GetStats(ctx context.Context, statsType codec.StatsType) (codec.Event, error) {
	return s.sendAndWaitStats(ctx, codec.BuildGetStats(statsType), statsType)
}

// ListContacts issues getContacts and collects the contactsStart /
// contact* / contactsEnd sequence the radio streams back. Only the
// first frame (contactsStart) resolves as a normal single in-flight
// command; the rest arrive as solicited replies with no waiter and
// are routed to subscribers as out-of-order events (see classify), so
// ListContacts runs its own temporary subscription rather than
// reusing sendAndWait.
func (s *Session) ListContacts(ctx context.Context, since *uint32) ([]codec.Contact, error) {
	sub := s.subscribe()
	defer s.unsubscribe(sub)

	if _, err := s.SendAndAwait(ctx, codec.BuildGetContacts(since)); err != nil {
		return nil, err
	}

	var contacts []codec.Contact
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return contacts, newLifecycleError("session closed while listing contacts")
			}
			if ev.Code == codec.RespContact && ev.Contact != nil {
				contacts = append(contacts, *ev.Contact)
				continue
			}
			if ev.Code == codec.RespContactsEnd {
				return contacts, nil
			}
		case <-ctx.Done():
			return contacts, newCommandError("cancelled while listing contacts", ctx.Err())
		}
	}
}

func (s *Session) write(ctx context.Context, frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.transport.Send(ctx, frame); err != nil {
		return newTransportError("send failed", err)
	}
	return nil
}

// runReceiveLoop is the session's single reader: it is the only
// goroutine that reads the transport and resolves waiters. Callers
// register and abandon their own pending entries, and state changes
// are published from whichever goroutine makes them.
func (s *Session) runReceiveLoop() {
	defer close(s.done)
	defer s.failAllWaiters(newTransportError("transport closed", nil))
	defer s.closeSubscribers()

	for frame := range s.transport.Recv() {
		ev := codec.Parse(frame)
		s.classify(ev)
	}
	s.setState(codec.StateDisconnected, nil)
}

// classify implements the receive loop's dispatch rule: acks resolve
// their waiter and still fan out a copy to subscribers; other push
// events go straight to subscribers; solicited replies resolve the
// single pending command; parseFailure always goes to subscribers only.
func (s *Session) classify(ev codec.Event) {
	if ev.ParseFailure != nil {
		s.publish(ev)
		return
	}

	if ev.Code == codec.RespAck && ev.Ack != nil {
		s.pending.resolveAck(ev.Ack.Code, ev)
		s.publish(ev)
		return
	}

	if ev.Code == codec.RespBinaryResponse && ev.BinaryResponse != nil {
		if entry, ok := s.pending.resolveBinaryRequest(ev.BinaryResponse.Tag); ok {
			prefix := entry.pubkeyPrefix
			ev.BinaryResponse.PublicKeyPrefix = &prefix
		} else {
			s.cfg.logger.Debug("binary response with unknown tag", zap.Any("tag", ev.BinaryResponse.Tag))
		}
		s.pending.resolveBinaryWaiter(ev.BinaryResponse.Tag, ev)
		s.publish(ev)
		return
	}

	if ev.Code.IsPush() {
		s.publish(ev)
		return
	}

	if ev.Code == codec.RespStats {
		if statsType, ok := s.pending.pendingStatsType(); ok {
			if resolved, err := codec.ParseStats(ev.Raw, statsType); err == nil {
				ev = resolved
			}
		}
	}

	if !s.pending.resolveCurrent(ev) {
		// Out-of-order solicited reply: no command is waiting for it.
		s.cfg.logger.Warn("out-of-order response", zap.String("code", ev.Code.String()))
		s.publish(ev)
	}
}

func (s *Session) publish(ev codec.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Drop-oldest: a full channel needs to free two slots here,
			// not one — one for ev, one for the QueueOverflow diagnostic
			// recording the drop, or that diagnostic always lands on a
			// channel that's still full and never actually gets delivered.
			dropped := ev.Code
			select {
			case old := <-ch:
				dropped = old.Code
			default:
			}
			select {
			case <-ch:
			default:
			}
			ch <- ev
			ch <- codec.Event{Code: ev.Code, QueueOverflow: &codec.QueueOverflow{DroppedCode: dropped}}
		}
	}
}

func (s *Session) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

func (s *Session) failAllWaiters(err error) {
	failEvent := codec.Event{ParseFailure: &codec.ParseFailure{Reason: err.Error()}}
	s.pending.resolveCurrent(failEvent)
	s.pending.failAllAcks(failEvent)
	s.pending.failAllBinaryWaiters(failEvent)
}

func (s *Session) transitionState(from, to codec.ConnectionState) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *Session) setState(to codec.ConnectionState, err error) {
	s.stateMu.Lock()
	s.state = to
	s.stateMu.Unlock()
	s.publish(codec.Event{ConnectionState: &codec.ConnectionStateChange{State: to, Err: err}})
}

// State returns the session's last observed connection state.
func (s *Session) State() codec.ConnectionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}
