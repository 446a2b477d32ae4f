package service

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"dispatch-project/internal/domain"
)

const testRecipient = "+573001234567"

func textRequest(body string) domain.MessageRequest {
	return domain.MessageRequest{
		Recipient: testRecipient,
		Type:      domain.TypeText,
		Body:      body,
	}
}

func TestBuild_Text(t *testing.T) {
	result, err := Build(textRequest("Hola"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Payload.Type != "text" {
		t.Errorf("expected type text, got %q", result.Payload.Type)
	}
	if result.Payload.Text == nil || result.Payload.Text.Body != "Hola" {
		t.Errorf("unexpected text payload: %+v", result.Payload.Text)
	}
	if result.Payload.To != testRecipient {
		t.Errorf("expected to=%s, got %q", testRecipient, result.Payload.To)
	}
	if result.Summary != "Hola" {
		t.Errorf("expected summary Hola, got %q", result.Summary)
	}
}

func TestBuild_TextValidation(t *testing.T) {
	if _, err := Build(textRequest("")); err == nil {
		t.Error("expected error for empty body")
	}
	if _, err := Build(textRequest("   ")); err == nil {
		t.Error("expected error for whitespace-only body")
	}
	if _, err := Build(textRequest(strings.Repeat("x", MaxBodyLength+1))); err == nil {
		t.Error("expected error for oversized body")
	}
	if _, err := Build(textRequest(strings.Repeat("x", MaxBodyLength))); err != nil {
		t.Errorf("body at the limit should pass: %v", err)
	}
}

func TestBuild_ImageCaptionFallback(t *testing.T) {
	req := domain.MessageRequest{
		Recipient: testRecipient,
		Type:      domain.TypeImage,
		Body:      "fallback caption",
		ImageURL:  "https://example.com/pic.png",
	}

	result, err := Build(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Payload.Image == nil || result.Payload.Image.Caption != "fallback caption" {
		t.Errorf("caption should fall back to body, got %+v", result.Payload.Image)
	}

	req.Caption = "explicit"
	result, err = Build(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Payload.Image.Caption != "explicit" {
		t.Errorf("explicit caption should win, got %q", result.Payload.Image.Caption)
	}

	req.ImageURL = "ftp://example.com/pic.png"
	if _, err := Build(req); err == nil {
		t.Error("expected error for non-http image URL")
	}
}

func buttonsRequest(lines ...string) domain.MessageRequest {
	return domain.MessageRequest{
		Recipient: testRecipient,
		Type:      domain.TypeButtons,
		Body:      "Pick one",
		Buttons:   lines,
	}
}

func TestBuild_Buttons(t *testing.T) {
	result, err := Build(buttonsRequest("Yes|yes_id", "No|no_id", "Later|later_id"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	interactive := result.Payload.Interactive
	if interactive == nil || interactive.Type != "button" {
		t.Fatalf("expected button interactive, got %+v", interactive)
	}

	buttons := interactive.Action.Buttons
	if len(buttons) != 3 {
		t.Fatalf("expected 3 buttons, got %d", len(buttons))
	}
	// Input order is preserved.
	for i, id := range []string{"yes_id", "no_id", "later_id"} {
		if buttons[i].Reply.ID != id {
			t.Errorf("button %d: expected id %q, got %q", i, id, buttons[i].Reply.ID)
		}
		if buttons[i].Type != "reply" {
			t.Errorf("button %d: expected type reply, got %q", i, buttons[i].Type)
		}
	}
}

func TestBuild_ButtonsCount(t *testing.T) {
	if _, err := Build(buttonsRequest()); err == nil {
		t.Error("expected error for zero buttons")
	}
	if _, err := Build(buttonsRequest("A|a", "B|b", "C|c", "D|d")); err == nil {
		t.Error("expected error for four buttons")
	}
}

func TestBuild_ButtonsHeaderAsymmetry(t *testing.T) {
	req := buttonsRequest("Yes|yes_id")
	req.HeaderType = domain.HeaderImage
	req.HeaderImageURL = "not-a-url"

	// Invalid image headers are dropped silently for buttons.
	result, err := Build(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Payload.Interactive.Header != nil {
		t.Errorf("invalid image header should be dropped, got %+v", result.Payload.Interactive.Header)
	}

	// Whitespace-only text headers are dropped silently too.
	req.HeaderType = domain.HeaderText
	req.HeaderText = "   "
	result, err = Build(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Payload.Interactive.Header != nil {
		t.Errorf("blank text header should be dropped, got %+v", result.Payload.Interactive.Header)
	}
}

func listRequest(lines ...string) domain.MessageRequest {
	return domain.MessageRequest{
		Recipient:   testRecipient,
		Type:        domain.TypeList,
		Body:        "Choose an option",
		ButtonLabel: "See options",
		Options:     lines,
	}
}

func TestBuild_List(t *testing.T) {
	result, err := Build(listRequest("One|id_1|First", "Two|id_2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	interactive := result.Payload.Interactive
	if interactive == nil || interactive.Type != "list" {
		t.Fatalf("expected list interactive, got %+v", interactive)
	}
	if interactive.Action.Button != "See options" {
		t.Errorf("expected button label, got %q", interactive.Action.Button)
	}
	if len(interactive.Action.Sections) != 1 {
		t.Fatalf("expected one section, got %d", len(interactive.Action.Sections))
	}

	rows := interactive.Action.Sections[0].Rows
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Description != "First" {
		t.Errorf("expected description on first row, got %q", rows[0].Description)
	}
	if rows[1].Description != "" {
		t.Errorf("expected no description on second row, got %q", rows[1].Description)
	}
}

func TestBuild_ListRowLimits(t *testing.T) {
	if _, err := Build(listRequest()); err == nil {
		t.Error("expected error for zero rows")
	}

	var lines []string
	for i := 0; i < MaxListRows+1; i++ {
		lines = append(lines, "Row|row_"+strings.Repeat("x", i+1))
	}
	if _, err := Build(listRequest(lines...)); err == nil {
		t.Error("expected error for eleven rows")
	}

	if _, err := Build(listRequest("A|a", "")); err != nil {
		t.Errorf("blank lines should not count as rows: %v", err)
	}
}

func TestBuild_ListImageHeaderFailsHard(t *testing.T) {
	req := listRequest("One|id_1")
	req.HeaderType = domain.HeaderImage
	req.HeaderImageURL = "not-a-url"

	_, err := Build(req)
	if err == nil {
		t.Fatal("expected hard failure for invalid list header image")
	}
	var valErr *domain.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if valErr.Field != "header_image_url" {
		t.Errorf("expected field header_image_url, got %q", valErr.Field)
	}
}

func TestBuild_ListImageHeaderSeparateMessage(t *testing.T) {
	req := listRequest("One|id_1")
	req.HeaderType = domain.HeaderImage
	req.HeaderImageURL = "https://example.com/header.png"

	result, err := Build(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HeaderImageURL != "https://example.com/header.png" {
		t.Errorf("expected header image URL for separate send, got %q", result.HeaderImageURL)
	}
	if result.Payload.Interactive.Header != nil {
		t.Errorf("list payload itself must not carry the image header, got %+v", result.Payload.Interactive.Header)
	}
}

func TestBuild_CTA(t *testing.T) {
	req := domain.MessageRequest{
		Recipient: testRecipient,
		Type:      domain.TypeCTA,
		Body:      "Visit our portal",
		CTA:       "Open portal|cta|https://example.com/portal",
	}

	result, err := Build(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	interactive := result.Payload.Interactive
	if interactive == nil || interactive.Type != "cta_url" {
		t.Fatalf("expected cta_url interactive, got %+v", interactive)
	}
	if interactive.Action.Name != "cta_url" {
		t.Errorf("expected action name cta_url, got %q", interactive.Action.Name)
	}
	params := interactive.Action.Parameters
	if params == nil || params.DisplayText != "Open portal" || params.URL != "https://example.com/portal" {
		t.Errorf("unexpected cta parameters: %+v", params)
	}

	req.CTA = ""
	if _, err := Build(req); err == nil {
		t.Error("expected error for missing cta row")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	req := listRequest("One|id_1|First", "Two|id_2")
	req.Footer = "footer"
	req.HeaderType = domain.HeaderText
	req.HeaderText = "header"

	first, err := Build(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Build(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := json.Marshal(first.Payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second.Payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("payloads differ between identical builds:\n%s\n%s", a, b)
	}
}

func TestBuild_UnknownType(t *testing.T) {
	req := domain.MessageRequest{Recipient: testRecipient, Type: "video", Body: "x"}
	if _, err := Build(req); !errors.Is(err, domain.ErrUnknownMessageType) {
		t.Errorf("expected ErrUnknownMessageType, got %v", err)
	}
}
