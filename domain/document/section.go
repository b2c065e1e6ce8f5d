// Package document models the structured content written to the archive
// document and turns it into offset-based operations.
package document

import (
	"chat-archiver/errors"
	"fmt"
)

const (
	MinHeadingLevel = 1
	MaxHeadingLevel = 6

	lineSeparator      = "\n"
	metadataDelimiter  = ": "
	horizontalRuleText = "────────────────────"
)

// Section is one typed unit of document content. The set of implementations
// is closed: Heading, Metadata, HorizontalRule, BoldText and Paragraph.
type Section interface {
	Content() string
	section()
}

type Heading struct {
	level int
	text  string
}

func NewHeading(level int, text string) (Heading, error) {
	if level < MinHeadingLevel || level > MaxHeadingLevel {
		return Heading{}, errors.NewValidationError("heading level",
			fmt.Sprintf("%d is outside [%d,%d]", level, MinHeadingLevel, MaxHeadingLevel),
			errors.ErrInvalidHeadingLevel)
	}
	if err := requireText("heading text", text); err != nil {
		return Heading{}, err
	}
	return Heading{level: level, text: text}, nil
}

func (h Heading) Level() int      { return h.level }
func (h Heading) Content() string { return h.text }
func (Heading) section()          {}

type Metadata struct {
	label string
	value string
}

func NewMetadata(label, value string) (Metadata, error) {
	if err := requireText("metadata label", label); err != nil {
		return Metadata{}, err
	}
	if err := requireText("metadata value", value); err != nil {
		return Metadata{}, err
	}
	return Metadata{label: label, value: value}, nil
}

func (m Metadata) Label() string   { return m.label }
func (m Metadata) Value() string   { return m.value }
func (m Metadata) Content() string { return m.label + metadataDelimiter + m.value }
func (Metadata) section()          {}

// HorizontalRule separates blocks; it carries no caller text.
type HorizontalRule struct{}

func NewHorizontalRule() HorizontalRule { return HorizontalRule{} }

func (HorizontalRule) Content() string { return horizontalRuleText }
func (HorizontalRule) section()        {}

type BoldText struct {
	text string
}

func NewBoldText(text string) (BoldText, error) {
	if err := requireText("bold text", text); err != nil {
		return BoldText{}, err
	}
	return BoldText{text: text}, nil
}

func (b BoldText) Content() string { return b.text }
func (BoldText) section()          {}

// Paragraph holds free text; embedded line breaks are kept as they are.
type Paragraph struct {
	text string
}

func NewParagraph(text string) (Paragraph, error) {
	if err := requireText("paragraph text", text); err != nil {
		return Paragraph{}, err
	}
	return Paragraph{text: text}, nil
}

func (p Paragraph) Content() string { return p.text }
func (Paragraph) section()          {}

func requireText(field, text string) error {
	if text == "" {
		return errors.NewValidationError(field, "must not be empty", nil)
	}
	return nil
}
