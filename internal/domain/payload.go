package domain

// MessagingProduct is the fixed product identifier on every outbound payload.
const MessagingProduct = "whatsapp"

// OutboundPayload is the wire-shaped message object sent to the platform.
// Exactly one of Text, Image or Interactive is set, matching Type.
type OutboundPayload struct {
	MessagingProduct string              `json:"messaging_product"`
	RecipientType    string              `json:"recipient_type"`
	To               string              `json:"to"`
	Type             string              `json:"type"`
	Text             *TextPayload        `json:"text,omitempty"`
	Image            *ImagePayload       `json:"image,omitempty"`
	Interactive      *InteractivePayload `json:"interactive,omitempty"`
}

// NewTextPayload builds a plain text payload for the given recipient.
func NewTextPayload(to, body string) OutboundPayload {
	return OutboundPayload{
		MessagingProduct: MessagingProduct,
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &TextPayload{Body: body},
	}
}

// NewImagePayload builds an image payload for the given recipient.
func NewImagePayload(to, link, caption string) OutboundPayload {
	return OutboundPayload{
		MessagingProduct: MessagingProduct,
		RecipientType:    "individual",
		To:               to,
		Type:             "image",
		Image:            &ImagePayload{Link: link, Caption: caption},
	}
}

// TextPayload holds a text message body.
type TextPayload struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// ImagePayload holds an image link with an optional caption.
type ImagePayload struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

// InteractivePayload covers the button, list and cta_url interactive shapes.
type InteractivePayload struct {
	Type   string             `json:"type"` // "button", "list" or "cta_url"
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   *InteractiveBody   `json:"body"`
	Footer *InteractiveFooter `json:"footer,omitempty"`
	Action *InteractiveAction `json:"action"`
}

// InteractiveHeader is an optional text or image header.
type InteractiveHeader struct {
	Type  string        `json:"type"`
	Text  string        `json:"text,omitempty"`
	Image *ImagePayload `json:"image,omitempty"`
}

// InteractiveBody holds the interactive message body text.
type InteractiveBody struct {
	Text string `json:"text"`
}

// InteractiveFooter holds the optional footer text.
type InteractiveFooter struct {
	Text string `json:"text"`
}

// InteractiveAction carries the type-specific action fields: Buttons for
// button messages, Button+Sections for lists, Name+Parameters for cta_url.
type InteractiveAction struct {
	Button     string         `json:"button,omitempty"`
	Buttons    []ReplyButton  `json:"buttons,omitempty"`
	Sections   []ListSection  `json:"sections,omitempty"`
	Name       string         `json:"name,omitempty"`
	Parameters *CTAParameters `json:"parameters,omitempty"`
}

// ReplyButton is one quick-reply button.
type ReplyButton struct {
	Type  string      `json:"type"` // always "reply"
	Reply ButtonReply `json:"reply"`
}

// ButtonReply identifies a button by opaque id and display title.
type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListSection groups list rows under an optional title.
type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

// ListRow is one selectable list entry.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CTAParameters holds the call-to-action display text and target URL.
type CTAParameters struct {
	DisplayText string `json:"display_text"`
	URL         string `json:"url"`
}

// PlatformResponse is the platform's reply to a successful send.
type PlatformResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// FirstMessageID returns the id of the first accepted message, or "" when the
// platform omitted it.
func (r *PlatformResponse) FirstMessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}
