package service

import (
	"strings"

	"dispatch-project/internal/domain"
)

// Delimited-row literals shared by options, buttons and CTA rows.
const (
	rowDelimiter = "|"

	// CloseFlag marks an option as conversation-closing when it appears in
	// the third or fourth field of a row.
	CloseFlag = "close"

	// CTAMarker is the literal required in the middle field of a CTA row.
	CTAMarker = "cta"
)

// MaxTitleLength bounds button and list-row titles.
const MaxTitleLength = 20

// ParseOption parses one "title|id|description?|closeFlag?" row into a typed
// option. A description equal to the close flag does not become a description.
func ParseOption(field, line string) (domain.InteractiveOption, error) {
	var opt domain.InteractiveOption

	fields := splitRow(line)
	if len(fields) < 2 || len(fields) > 4 {
		return opt, domain.NewValidationError(field, "row %q must have 2-4 fields separated by %q", line, rowDelimiter)
	}

	opt.Title = fields[0]
	opt.ID = fields[1]

	if opt.Title == "" {
		return opt, domain.NewValidationError(field, "row %q has an empty title", line)
	}
	if len([]rune(opt.Title)) > MaxTitleLength {
		return opt, domain.NewValidationError(field, "title %q exceeds %d characters", opt.Title, MaxTitleLength)
	}
	if opt.ID == "" {
		return opt, domain.NewValidationError(field, "row %q has an empty id", line)
	}

	if len(fields) >= 3 {
		if fields[2] == CloseFlag {
			opt.IsCloseMarker = true
		} else {
			opt.Description = fields[2]
		}
	}

	if len(fields) == 4 {
		switch fields[3] {
		case CloseFlag:
			opt.IsCloseMarker = true
		case "":
		default:
			return opt, domain.NewValidationError(field, "row %q has unrecognized close flag %q", line, fields[3])
		}
	}

	return opt, nil
}

// ParseOptions parses a set of rows, skipping blank lines and enforcing
// unique ids within the message.
func ParseOptions(field string, lines []string) ([]domain.InteractiveOption, error) {
	var options []domain.InteractiveOption
	seen := make(map[string]struct{})

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		opt, err := ParseOption(field, line)
		if err != nil {
			return nil, err
		}

		if _, dup := seen[opt.ID]; dup {
			return nil, domain.NewValidationError(field, "duplicate option id %q", opt.ID)
		}
		seen[opt.ID] = struct{}{}

		options = append(options, opt)
	}

	return options, nil
}

// ParseCTA parses the single "title|cta|url" call-to-action row. The middle
// field must literally equal the CTA marker and the target must carry an
// http or https scheme.
func ParseCTA(field, line string) (domain.CTAAction, error) {
	var action domain.CTAAction

	fields := splitRow(line)
	if len(fields) != 3 {
		return action, domain.NewValidationError(field, "row %q must have exactly 3 fields separated by %q", line, rowDelimiter)
	}

	action.Title = fields[0]
	action.URL = fields[2]

	if action.Title == "" {
		return action, domain.NewValidationError(field, "row %q has an empty title", line)
	}
	if len([]rune(action.Title)) > MaxTitleLength {
		return action, domain.NewValidationError(field, "title %q exceeds %d characters", action.Title, MaxTitleLength)
	}
	if fields[1] != CTAMarker {
		return action, domain.NewValidationError(field, "row %q middle field must be %q", line, CTAMarker)
	}
	if !domain.ValidURL(action.URL) {
		return action, domain.NewValidationError(field, "target %q must start with http:// or https://", action.URL)
	}

	return action, nil
}

// ParseCloseIDs splits a comma-separated identifier list into a trimmed set.
func ParseCloseIDs(raw string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func splitRow(line string) []string {
	fields := strings.Split(line, rowDelimiter)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
