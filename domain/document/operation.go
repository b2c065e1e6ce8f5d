package document

import (
	"chat-archiver/errors"
	"fmt"
	"unicode/utf16"
)

// FirstOffset is the first valid insertion point of an empty document.
const FirstOffset = 1

// Range is a half-open [Start, End) span of document offsets.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Operation is an instruction for the remote document: InsertText,
// ApplyHeading or ApplyBold. Operations are only built by ToOperations.
type Operation interface {
	Range() Range
	operation()
}

type InsertText struct {
	offset int
	text   string
}

func (i InsertText) Offset() int  { return i.offset }
func (i InsertText) Text() string { return i.text }
func (i InsertText) Range() Range { return Range{Start: i.offset, End: i.offset + Length(i.text)} }
func (InsertText) operation()     {}

type ApplyHeading struct {
	span  Range
	level int
}

func (a ApplyHeading) Level() int   { return a.level }
func (a ApplyHeading) Range() Range { return a.span }
func (ApplyHeading) operation()     {}

type ApplyBold struct {
	span Range
}

func (a ApplyBold) Range() Range { return a.span }
func (ApplyBold) operation()     {}

// Batch is an ordered list of operations for one submission.
// EndOffset is where the next batch would start.
type Batch struct {
	StartOffset int
	EndOffset   int
	Operations  []Operation
}

func (b Batch) Inserts() []InsertText {
	var inserts []InsertText
	for _, op := range b.Operations {
		if insert, ok := op.(InsertText); ok {
			inserts = append(inserts, insert)
		}
	}
	return inserts
}

func (b Batch) Styles() []Operation {
	var styles []Operation
	for _, op := range b.Operations {
		if _, ok := op.(InsertText); !ok {
			styles = append(styles, op)
		}
	}
	return styles
}

// Length counts text the way the document service indexes it: in UTF-16
// code units, a line separator being one unit.
func Length(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

// ToOperations lays sections out from startOffset. Every insertion comes
// before every style operation: styles are resolved against the document
// as it is when they execute, so they must only target text already present.
func ToOperations(sections []Section, startOffset int) (Batch, error) {
	return layout(sections, startOffset, false)
}

// ToOperationsOnNewLine is ToOperations for a document whose last paragraph
// holds text: a line separator is inserted at startOffset first, so the
// sections start a paragraph of their own instead of joining that text.
func ToOperationsOnNewLine(sections []Section, startOffset int) (Batch, error) {
	return layout(sections, startOffset, true)
}

func layout(sections []Section, startOffset int, newLine bool) (Batch, error) {
	if startOffset < FirstOffset {
		return Batch{}, errors.NewValidationError("start offset",
			fmt.Sprintf("%d is before the first insertion point %d", startOffset, FirstOffset),
			errors.ErrInvalidOffset)
	}

	var inserts, styles []Operation
	cursor := startOffset
	insert := func(text string) Range {
		op := InsertText{offset: cursor, text: text}
		inserts = append(inserts, op)
		cursor = op.Range().End
		return op.Range()
	}
	if newLine && len(sections) > 0 {
		insert(lineSeparator)
	}

	for i, s := range sections {
		if err := check(s); err != nil {
			return Batch{}, fmt.Errorf("section %d: %w", i, err)
		}
		switch section := s.(type) {
		case Heading:
			span := insert(section.text + lineSeparator)
			styles = append(styles, ApplyHeading{span: span, level: section.level})
		case Metadata:
			label := insert(section.label + metadataDelimiter)
			insert(section.value + lineSeparator)
			styles = append(styles, ApplyBold{span: label})
		case HorizontalRule:
			insert(horizontalRuleText + lineSeparator)
		case BoldText:
			span := insert(section.text + lineSeparator)
			styles = append(styles, ApplyBold{span: Range{Start: span.Start, End: span.End - Length(lineSeparator)}})
		case Paragraph:
			insert(section.text + lineSeparator)
		default:
			return Batch{}, fmt.Errorf("section %d: %w: %T", i, errors.ErrUnknownSection, s)
		}
	}

	return Batch{
		StartOffset: startOffset,
		EndOffset:   cursor,
		Operations:  append(inserts, styles...),
	}, nil
}

// check rejects zero-value sections built without their constructor.
func check(s Section) error {
	switch section := s.(type) {
	case nil:
		return errors.NewValidationError("section", "must not be nil", nil)
	case Heading:
		_, err := NewHeading(section.level, section.text)
		return err
	case Metadata:
		_, err := NewMetadata(section.label, section.value)
		return err
	case BoldText:
		_, err := NewBoldText(section.text)
		return err
	case Paragraph:
		_, err := NewParagraph(section.text)
		return err
	}
	return nil
}
