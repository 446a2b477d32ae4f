package service

import (
	"strings"

	"dispatch-project/internal/domain"
)

// Payload limits imposed by the platform.
const (
	MaxBodyLength = 4096
	MaxButtons    = 3
	MaxListRows   = 10
)

// DefaultSectionTitle labels the list section when the input supplies none.
const DefaultSectionTitle = "Options"

// BuildResult is the payload builder's output. HeaderImageURL is set only for
// list messages with an image header: the platform does not render image
// headers on lists, so the caller must send that image as a separate message
// immediately before the list payload.
type BuildResult struct {
	Payload        domain.OutboundPayload
	Summary        string
	HeaderImageURL string
}

// Build turns a validated MessageRequest into a wire-ready payload and a
// human-readable summary. It performs no I/O and is deterministic: identical
// requests yield identical payloads.
func Build(req domain.MessageRequest) (*BuildResult, error) {
	switch req.Type {
	case domain.TypeText:
		return buildText(req)
	case domain.TypeImage:
		return buildImage(req)
	case domain.TypeButtons:
		return buildButtons(req)
	case domain.TypeList:
		return buildList(req)
	case domain.TypeCTA:
		return buildCTA(req)
	default:
		return nil, domain.NewValidationError("message_type", "%w: %q", domain.ErrUnknownMessageType, req.Type)
	}
}

func buildText(req domain.MessageRequest) (*BuildResult, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domain.NewValidationError("body", "message body must not be empty")
	}
	if len([]rune(body)) > MaxBodyLength {
		return nil, domain.NewValidationError("body", "message body exceeds %d characters", MaxBodyLength)
	}

	return &BuildResult{
		Payload: domain.NewTextPayload(req.Recipient, body),
		Summary: body,
	}, nil
}

func buildImage(req domain.MessageRequest) (*BuildResult, error) {
	if !domain.ValidURL(req.ImageURL) {
		return nil, domain.NewValidationError("image_url", "image URL %q must start with http:// or https://", req.ImageURL)
	}

	// Caption falls back to the body text when no explicit caption is given.
	caption := strings.TrimSpace(req.Caption)
	if caption == "" {
		caption = strings.TrimSpace(req.Body)
	}

	summary := caption
	if summary == "" {
		summary = req.ImageURL
	}

	return &BuildResult{
		Payload: domain.NewImagePayload(req.Recipient, req.ImageURL, caption),
		Summary: summary,
	}, nil
}

func buildButtons(req domain.MessageRequest) (*BuildResult, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domain.NewValidationError("body", "button message body must not be empty")
	}

	options, err := ParseOptions("buttons", req.Buttons)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, domain.NewValidationError("buttons", "at least one button is required")
	}
	if len(options) > MaxButtons {
		return nil, domain.NewValidationError("buttons", "at most %d buttons are allowed, got %d", MaxButtons, len(options))
	}

	buttons := make([]domain.ReplyButton, 0, len(options))
	for _, opt := range options {
		buttons = append(buttons, domain.ReplyButton{
			Type:  "reply",
			Reply: domain.ButtonReply{ID: opt.ID, Title: opt.Title},
		})
	}

	interactive := &domain.InteractivePayload{
		Type:   "button",
		Header: headerFor(req),
		Body:   &domain.InteractiveBody{Text: body},
		Footer: footerFor(req),
		Action: &domain.InteractiveAction{Buttons: buttons},
	}

	return &BuildResult{
		Payload: interactivePayload(req.Recipient, interactive),
		Summary: body,
	}, nil
}

func buildList(req domain.MessageRequest) (*BuildResult, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domain.NewValidationError("body", "list message body must not be empty")
	}
	if strings.TrimSpace(req.ButtonLabel) == "" {
		return nil, domain.NewValidationError("button_label", "list button label must not be empty")
	}

	options, err := ParseOptions("options", req.Options)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, domain.NewValidationError("options", "at least one list option is required")
	}
	if len(options) > MaxListRows {
		return nil, domain.NewValidationError("options", "at most %d list options are allowed, got %d", MaxListRows, len(options))
	}

	rows := make([]domain.ListRow, 0, len(options))
	for _, opt := range options {
		rows = append(rows, domain.ListRow{
			ID:          opt.ID,
			Title:       opt.Title,
			Description: opt.Description,
		})
	}

	sectionTitle := strings.TrimSpace(req.SectionTitle)
	if sectionTitle == "" {
		sectionTitle = DefaultSectionTitle
	}

	interactive := &domain.InteractivePayload{
		Type:   "list",
		Body:   &domain.InteractiveBody{Text: body},
		Footer: footerFor(req),
		Action: &domain.InteractiveAction{
			Button:   strings.TrimSpace(req.ButtonLabel),
			Sections: []domain.ListSection{{Title: sectionTitle, Rows: rows}},
		},
	}

	result := &BuildResult{
		Payload: interactivePayload(req.Recipient, interactive),
		Summary: body,
	}

	switch req.HeaderType {
	case domain.HeaderText:
		if text := strings.TrimSpace(req.HeaderText); text != "" {
			interactive.Header = &domain.InteractiveHeader{Type: "text", Text: text}
		}
	case domain.HeaderImage:
		// Lists cannot carry an image header on the wire; the image goes out
		// as a separate preceding message, so a bad URL must fail here rather
		// than after that extra message is sent.
		if !domain.ValidURL(req.HeaderImageURL) {
			return nil, domain.NewValidationError("header_image_url", "header image URL %q must start with http:// or https://", req.HeaderImageURL)
		}
		result.HeaderImageURL = req.HeaderImageURL
	}

	return result, nil
}

func buildCTA(req domain.MessageRequest) (*BuildResult, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domain.NewValidationError("body", "cta message body must not be empty")
	}
	if strings.TrimSpace(req.CTA) == "" {
		return nil, domain.NewValidationError("cta", "exactly one cta row is required")
	}

	action, err := ParseCTA("cta", req.CTA)
	if err != nil {
		return nil, err
	}

	interactive := &domain.InteractivePayload{
		Type:   "cta_url",
		Header: headerFor(req),
		Body:   &domain.InteractiveBody{Text: body},
		Footer: footerFor(req),
		Action: &domain.InteractiveAction{
			Name:       "cta_url",
			Parameters: &domain.CTAParameters{DisplayText: action.Title, URL: action.URL},
		},
	}

	return &BuildResult{
		Payload: interactivePayload(req.Recipient, interactive),
		Summary: body,
	}, nil
}

// headerFor resolves the header variant for buttons and cta messages.
// Whitespace-only text headers and invalid image URLs are dropped silently.
func headerFor(req domain.MessageRequest) *domain.InteractiveHeader {
	switch req.HeaderType {
	case domain.HeaderText:
		text := strings.TrimSpace(req.HeaderText)
		if text == "" {
			return nil
		}
		return &domain.InteractiveHeader{Type: "text", Text: text}
	case domain.HeaderImage:
		if !domain.ValidURL(req.HeaderImageURL) {
			return nil
		}
		return &domain.InteractiveHeader{
			Type:  "image",
			Image: &domain.ImagePayload{Link: req.HeaderImageURL},
		}
	}
	return nil
}

func footerFor(req domain.MessageRequest) *domain.InteractiveFooter {
	footer := strings.TrimSpace(req.Footer)
	if footer == "" {
		return nil
	}
	return &domain.InteractiveFooter{Text: footer}
}

func interactivePayload(to string, interactive *domain.InteractivePayload) domain.OutboundPayload {
	return domain.OutboundPayload{
		MessagingProduct: domain.MessagingProduct,
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive:      interactive,
	}
}
