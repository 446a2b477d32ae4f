package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// MessageType selects one of the supported payload shapes.
type MessageType string

const (
	TypeText    MessageType = "text"
	TypeImage   MessageType = "image"
	TypeButtons MessageType = "buttons"
	TypeList    MessageType = "list"
	TypeCTA     MessageType = "cta"
)

// HeaderType selects the optional interactive message header variant.
type HeaderType string

const (
	HeaderNone  HeaderType = "none"
	HeaderText  HeaderType = "text"
	HeaderImage HeaderType = "image"
)

// MessageInput is the wire shape of one dispatch item as received from the
// host. Raw delimited rows and timing overrides are carried as-is; validation
// happens when the input is resolved into a MessageRequest.
type MessageInput struct {
	Recipient              string   `json:"recipient"`
	MessageType            string   `json:"message_type"`
	Body                   string   `json:"body,omitempty"`
	ImageURL               string   `json:"image_url,omitempty"`
	Caption                string   `json:"caption,omitempty"`
	HeaderType             string   `json:"header_type,omitempty"`
	HeaderText             string   `json:"header_text,omitempty"`
	HeaderImageURL         string   `json:"header_image_url,omitempty"`
	Footer                 string   `json:"footer,omitempty"`
	ButtonLabel            string   `json:"button_label,omitempty"`
	SectionTitle           string   `json:"section_title,omitempty"`
	Options                []string `json:"options,omitempty"`
	Buttons                []string `json:"buttons,omitempty"`
	CTA                    string   `json:"cta,omitempty"`
	Tries                  int      `json:"tries,omitempty"`
	RetryDelaySeconds      *int     `json:"retry_delay_seconds,omitempty"`
	PresenceCheck          bool     `json:"presence_check,omitempty"`
	WaitTimeCheckSeconds   int      `json:"wait_time_check_seconds,omitempty"`
	MessageIntervalSeconds int      `json:"message_interval_seconds,omitempty"`
	MaxAutoMessages        int      `json:"max_auto_messages,omitempty"`
	CheckMessages          []string `json:"check_messages,omitempty"`
}

// MessageRequest is the validated, immutable per-item intent. It is created
// once per input item and never mutated afterwards.
type MessageRequest struct {
	Recipient      string
	Type           MessageType
	Body           string
	ImageURL       string
	Caption        string
	HeaderType     HeaderType
	HeaderText     string
	HeaderImageURL string
	Footer         string
	ButtonLabel    string
	SectionTitle   string
	Options        []string
	Buttons        []string
	CTA            string
	Retry          RetryPolicy
	Presence       *PresenceSettings
}

// PresenceSettings configures the presence-check follow-up sequence.
type PresenceSettings struct {
	InitialWait time.Duration
	Interval    time.Duration
	MaxMessages int
	Messages    []string
}

// RetryPolicy bounds the delivery retry loop: up to Tries attempts with a
// fixed Delay between failed attempts.
type RetryPolicy struct {
	Tries int
	Delay time.Duration
}

// DefaultRetryPolicy returns the retry tuning used when neither the item nor
// the dispatch profile specifies one.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Tries: 3, Delay: 2 * time.Second}
}

// InteractiveOption is one parsed button or list row. IDs are opaque and must
// be unique within a message.
type InteractiveOption struct {
	ID            string
	Title         string
	Description   string
	IsCloseMarker bool
}

// CTAAction is the single parsed call-to-action row.
type CTAAction struct {
	Title string
	URL   string
}

var recipientPattern = regexp.MustCompile(`^\+\d{10,15}$`)

// NormalizeRecipient strips whitespace and hyphens from a phone number and
// validates the E.164-like format (+ followed by 10-15 digits).
func NormalizeRecipient(phone string) (string, error) {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, phone)

	if !strings.HasPrefix(normalized, "+") {
		return "", NewValidationError("recipient", "phone number must include country code with + prefix")
	}
	if !recipientPattern.MatchString(normalized) {
		return "", NewValidationError("recipient", "invalid phone format %q, expected +[country code][number] with 10-15 digits", normalized)
	}
	return normalized, nil
}

// ValidURL reports whether s carries an http or https scheme.
func ValidURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
