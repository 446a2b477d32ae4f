package domain

import "time"

// MessageKind labels a sent message within an item's receipt list.
type MessageKind string

const (
	KindMain          MessageKind = "main"
	KindPresenceCheck MessageKind = "presence_check"
	KindListImage     MessageKind = "list_image"
	KindGoodbye       MessageKind = "goodbye"
)

// SentMessageRecord is one delivered message's receipt. Records are append
// only; whichever component performs a send appends its own record.
type SentMessageRecord struct {
	Text      string      `json:"message"`
	MessageID string      `json:"messageId,omitempty"`
	Timestamp string      `json:"timestamp"`
	Kind      MessageKind `json:"type"`
}

// NewSentRecord builds a receipt for a message sent now.
func NewSentRecord(text string, resp *PlatformResponse, kind MessageKind) SentMessageRecord {
	return SentMessageRecord{
		Text:      text,
		MessageID: resp.FirstMessageID(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Kind:      kind,
	}
}

// DispatchResult is the per-item output of the dispatch path. On a recovered
// failure only Success, ItemID, Error and Timestamp are populated.
type DispatchResult struct {
	Success           bool                `json:"success"`
	ItemID            string              `json:"itemId"`
	Recipient         string              `json:"recipient,omitempty"`
	MessageType       MessageType         `json:"messageType,omitempty"`
	TotalMessagesSent int                 `json:"totalMessagesSent"`
	PresenceCheckSent bool                `json:"presenceCheckSent"`
	Messages          []SentMessageRecord `json:"messages,omitempty"`
	Error             string              `json:"error,omitempty"`
	Timestamp         string              `json:"timestamp"`
}
