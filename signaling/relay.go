package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rahulraut1220/LegalEase/pkg/logger"
)

// ErrRoomFull is returned by Transport.Join when the room is at capacity.
var ErrRoomFull = errors.New("room is full")

// Transport owns connections and their room membership.
type Transport interface {
	// Join adds connID to room unless it already holds capacity other
	// members, and returns the members in join order including connID.
	Join(connID, room string, capacity int) ([]string, error)
	// Members returns the current members of room in join order.
	Members(room string) []string
	// Send queues frame for connID without blocking. It reports false when
	// the connection is unknown or its queue is full.
	Send(connID string, frame []byte) bool
}

// EventObserver counts relay outcomes.
type EventObserver interface {
	ObserveRelayEvent(event, outcome string)
}

// Relay outcomes reported to the observer
const (
	OutcomeRouted   = "routed"
	OutcomeDropped  = "dropped"
	OutcomeRejected = "rejected"
	OutcomeIgnored  = "ignored"
)

const defaultRoomSize = 2

type Relay struct {
	transport   Transport
	directory   Directory
	maxRoomSize int
	observer    EventObserver
}

func NewRelay(transport Transport, directory Directory, maxRoomSize int, observer EventObserver) *Relay {
	if maxRoomSize <= 0 {
		maxRoomSize = defaultRoomSize
	}
	return &Relay{
		transport:   transport,
		directory:   directory,
		maxRoomSize: maxRoomSize,
		observer:    observer,
	}
}

// Dispatch decodes one frame from connID and routes it.
func (r *Relay) Dispatch(ctx context.Context, connID string, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		logger.Debug(ctx, "undecodable signaling frame", "conn_id", connID, "error", err)
		r.observe("unknown", OutcomeIgnored)
		return
	}

	var err error
	switch env.Event {
	case EventJoin:
		var msg JoinMessage
		if err = json.Unmarshal(env.Data, &msg); err == nil {
			r.Join(ctx, connID, msg)
		}
	case EventOffer:
		var msg OfferMessage
		if err = json.Unmarshal(env.Data, &msg); err == nil {
			r.Offer(ctx, connID, msg)
		}
	case EventAnswer:
		var msg AnswerMessage
		if err = json.Unmarshal(env.Data, &msg); err == nil {
			r.Answer(ctx, connID, msg)
		}
	case EventICECandidate:
		var msg ICECandidateMessage
		if err = json.Unmarshal(env.Data, &msg); err == nil {
			r.ICECandidate(ctx, connID, msg)
		}
	default:
		logger.Debug(ctx, "unknown signaling event", "conn_id", connID, "event", env.Event)
		r.observe("unknown", OutcomeIgnored)
		return
	}
	if err != nil {
		logger.Debug(ctx, "invalid signaling payload", "conn_id", connID, "event", env.Event, "error", err)
		r.observe(env.Event, OutcomeIgnored)
	}
}

// Join places connID in the room. Only the joiner is told about a peer
// already present. The email is recorded before membership changes so a
// concurrent joiner never sees this connection without it.
func (r *Relay) Join(ctx context.Context, connID string, msg JoinMessage) {
	r.directory.Set(connID, msg.Email)

	members, err := r.transport.Join(connID, msg.RoomID, r.maxRoomSize)
	if errors.Is(err, ErrRoomFull) {
		logger.Info(ctx, "room full, join refused", "conn_id", connID, "room", msg.RoomID)
		r.send(ctx, connID, EventRoomFull, RoomFullMessage{
			RoomID:  msg.RoomID,
			Message: fmt.Sprintf("Room already has %d participants", r.maxRoomSize),
		})
		r.observe(EventJoin, OutcomeRejected)
		return
	}
	if err != nil {
		if errors.Is(err, ErrUnknownConnection) {
			r.directory.Delete(connID)
		}
		logger.Debug(ctx, "join failed", "conn_id", connID, "room", msg.RoomID, "error", err)
		r.observe(EventJoin, OutcomeDropped)
		return
	}
	logger.Debug(ctx, "joined room", "conn_id", connID, "room", msg.RoomID)

	other, ok := firstOther(members, connID)
	if !ok {
		r.observe(EventJoin, OutcomeRouted)
		return
	}

	info, _ := r.directory.Get(other)
	r.directory.Link(connID, other)
	r.directory.Link(other, connID)
	r.send(ctx, connID, EventPeerPresent, PeerPresentMessage{SocketID: other, Email: info.Email})
	r.observe(EventJoin, OutcomeRouted)
}

// Offer forwards a session description to the other member of the room.
// It is dropped when the sender is alone.
func (r *Relay) Offer(ctx context.Context, connID string, msg OfferMessage) {
	other, ok := firstOther(r.transport.Members(msg.TargetRoomID), connID)
	if !ok {
		logger.Debug(ctx, "offer dropped, no peer in room", "conn_id", connID, "room", msg.TargetRoomID)
		r.observe(EventOffer, OutcomeDropped)
		return
	}

	r.directory.Link(connID, other)
	delivered := r.send(ctx, other, EventIncomingOffer, IncomingOfferMessage{
		SDP:            msg.SDP,
		CallerSocketID: connID,
		Email:          msg.Email,
	})
	r.observe(EventOffer, outcome(delivered))
}

// Answer forwards a session description straight to the target connection.
func (r *Relay) Answer(ctx context.Context, connID string, msg AnswerMessage) {
	delivered := r.send(ctx, msg.TargetSocketID, EventIncomingAnswer, IncomingAnswerMessage{
		SDP:            msg.SDP,
		CalleeSocketID: connID,
	})
	r.observe(EventAnswer, outcome(delivered))
}

// ICECandidate forwards a candidate straight to the target connection.
func (r *Relay) ICECandidate(ctx context.Context, connID string, msg ICECandidateMessage) {
	delivered := r.send(ctx, msg.TargetSocketID, EventIncomingICECandidate, IncomingICECandidateMessage{
		Candidate: msg.Candidate,
		From:      connID,
	})
	r.observe(EventICECandidate, outcome(delivered))
}

// Disconnect forgets connID. Peers are not notified.
func (r *Relay) Disconnect(ctx context.Context, connID string) {
	r.directory.Delete(connID)
	logger.Debug(ctx, "signaling connection closed", "conn_id", connID)
}

func (r *Relay) send(ctx context.Context, connID, event string, data any) bool {
	if connID == "" {
		return false
	}
	frame, err := Encode(event, data)
	if err != nil {
		logger.Error(ctx, "failed to encode signaling frame", "event", event, "error", err)
		return false
	}
	return r.transport.Send(connID, frame)
}

func (r *Relay) observe(event, outcome string) {
	if r.observer != nil {
		r.observer.ObserveRelayEvent(event, outcome)
	}
}

func firstOther(members []string, self string) (string, bool) {
	for _, id := range members {
		if id != self {
			return id, true
		}
	}
	return "", false
}

func outcome(delivered bool) string {
	if delivered {
		return OutcomeRouted
	}
	return OutcomeDropped
}
