package domain

import "encoding/json"

// WebhookObject is the object type of inbound business-account events.
const WebhookObject = "whatsapp_business_account"

// WebhookEvent is the parsed inbound webhook envelope. It is read-only and
// discarded after routing.
type WebhookEvent struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one business-account entry.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange wraps a single change notification.
type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue optionally carries inbound user messages. Status-only
// callbacks have no messages and are a normal no-op case.
type WebhookValue struct {
	MessagingProduct string               `json:"messaging_product"`
	Messages         []InboundUserMessage `json:"messages,omitempty"`
}

// InboundUserMessage is one message a remote user sent to the business number.
type InboundUserMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Interactive *InboundInteractive `json:"interactive,omitempty"`
}

// InboundInteractive carries the user's interactive selection. Which reply
// field is populated depends on the declared subtype.
type InboundInteractive struct {
	Type        string            `json:"type"` // "button_reply" or "list_reply"
	ButtonReply *InteractiveReply `json:"button_reply,omitempty"`
	ListReply   *InteractiveReply `json:"list_reply,omitempty"`
}

// InteractiveReply identifies the selected option.
type InteractiveReply struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// ParseWebhookEvent decodes raw JSON into a WebhookEvent. A nil event (no
// error) means the item does not match the inbound-event shape.
func ParseWebhookEvent(raw json.RawMessage) *WebhookEvent {
	var event WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil
	}
	if event.Object != WebhookObject {
		return nil
	}
	return &event
}

// FirstMessage returns the first inbound user message in the event, or nil
// when the event carries none (e.g. delivery-status callbacks).
func (e *WebhookEvent) FirstMessage() *InboundUserMessage {
	for i := range e.Entry {
		for j := range e.Entry[i].Changes {
			messages := e.Entry[i].Changes[j].Value.Messages
			if len(messages) > 0 {
				return &messages[0]
			}
		}
	}
	return nil
}

// ReplyID extracts the selected interactive-reply identifier, or "" when the
// message carries no recognizable interactive selection.
func (m *InboundUserMessage) ReplyID() string {
	if m.Interactive == nil {
		return ""
	}
	switch m.Interactive.Type {
	case "button_reply":
		if m.Interactive.ButtonReply != nil {
			return m.Interactive.ButtonReply.ID
		}
	case "list_reply":
		if m.Interactive.ListReply != nil {
			return m.Interactive.ListReply.ID
		}
	}
	return ""
}

// RoutedItem is one webhook item annotated with its routing outcome. Exactly
// one of the two output lanes receives each input item.
type RoutedItem struct {
	Item             json.RawMessage `json:"item"`
	SelectedID       string          `json:"selectedId,omitempty"`
	IsCloseAction    bool            `json:"isCloseAction"`
	WebhookProcessed bool            `json:"webhookProcessed"`
	Recipient        string          `json:"recipient,omitempty"`
	GoodbyeSent      bool            `json:"goodbyeSent,omitempty"`
	GoodbyeMessageID string          `json:"goodbyeMessageId,omitempty"`
	GoodbyeTimestamp string          `json:"goodbyeTimestamp,omitempty"`
	Error            string          `json:"error,omitempty"`
}
