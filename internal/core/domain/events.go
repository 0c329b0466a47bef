package domain

// Client-to-server event types.
const (
	EventJoin              = "join"
	EventLeave             = "leave"
	EventOffer             = "offer"
	EventAnswer            = "answer"
	EventICECandidate      = "ice-candidate"
	EventSendMessage       = "send-message"
	EventSendLike          = "send-like"
	EventUpdateViewerCount = "update-viewer-count"
)

// Server-to-client event types. Offer, answer and ice-candidate are echoed
// back under their inbound names, tagged with the sender id.
const (
	EventConnected          = "connected"
	EventExistingViewers    = "existing-viewers"
	EventViewerJoined       = "viewer-joined"
	EventViewerLeft         = "viewer-left"
	EventNewMessage         = "new-message"
	EventNewLike            = "new-like"
	EventViewerCountUpdated = "viewer-count-updated"
	EventError              = "error"
)
