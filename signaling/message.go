// Package signaling pairs two participants of a call in a named room and
// relays their session negotiation messages. It never looks inside SDP
// payloads or ICE candidates.
package signaling

import "encoding/json"

// Event names carried in Envelope.Event
const (
	EventJoin                 = "join"
	EventPeerPresent          = "peer-present"
	EventRoomFull             = "room-full"
	EventOffer                = "offer"
	EventIncomingOffer        = "incoming-offer"
	EventAnswer               = "answer"
	EventIncomingAnswer       = "incoming-answer"
	EventICECandidate         = "ice-candidate"
	EventIncomingICECandidate = "incoming-ice-candidate"
)

// Envelope is the JSON structure of every WebSocket frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinMessage struct {
	RoomID string `json:"roomId"`
	Email  string `json:"email"`
}

type PeerPresentMessage struct {
	SocketID string `json:"socketId"`
	Email    string `json:"email"`
}

type RoomFullMessage struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type OfferMessage struct {
	SDP          json.RawMessage `json:"sdp"`
	TargetRoomID string          `json:"targetRoomId"`
	Email        string          `json:"email"`
}

type IncomingOfferMessage struct {
	SDP            json.RawMessage `json:"sdp"`
	CallerSocketID string          `json:"callerSocketId"`
	Email          string          `json:"email"`
}

type AnswerMessage struct {
	SDP            json.RawMessage `json:"sdp"`
	TargetSocketID string          `json:"targetSocketId"`
}

type IncomingAnswerMessage struct {
	SDP            json.RawMessage `json:"sdp"`
	CalleeSocketID string          `json:"calleeSocketId"`
}

type ICECandidateMessage struct {
	Candidate      json.RawMessage `json:"candidate"`
	TargetSocketID string          `json:"targetSocketId"`
}

type IncomingICECandidateMessage struct {
	Candidate json.RawMessage `json:"candidate"`
	From      string          `json:"from"`
}

// Encode wraps data in an envelope for event.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
