package document

import (
	"chat-archiver/domain"
	"chat-archiver/errors"
	"chat-archiver/projection"
	"strconv"
	"time"
)

const (
	DefaultTitle = "Chat Archive"

	GeneratedLabel     = "Generated"
	TotalMessagesLabel = "Total messages"

	generatedLayout = "January 2, 2006 15:04"
	dayLayout       = "Monday, January 2, 2006"
	timeLayout      = "15:04"
)

type Renderer struct {
	Title string
}

func NewRenderer(title string) Renderer {
	if title == "" {
		title = DefaultTitle
	}
	return Renderer{Title: title}
}

// Render uses the default archive title.
func Render(messages []domain.ChatMessage, senderLabel string, generatedAt time.Time) ([]Section, error) {
	return NewRenderer(DefaultTitle).Render(messages, senderLabel, generatedAt)
}

// Render lays out, in order: the title heading, generation and count
// metadata, a rule, then for each calendar day a heading followed by
// time, content and rule for every message of that day.
func (r Renderer) Render(messages []domain.ChatMessage, senderLabel string, generatedAt time.Time) ([]Section, error) {
	if senderLabel == "" {
		return nil, errors.NewValidationError("sender label", "must not be empty", nil)
	}

	b := builder{}
	b.heading(1, r.Title+" - "+senderLabel)
	b.metadata(GeneratedLabel, generatedAt.Format(generatedLayout))
	b.metadata(TotalMessagesLabel, strconv.Itoa(len(messages)))
	b.rule()

	for _, day := range projection.GroupByDay(messages) {
		b.heading(2, day.Date.Format(dayLayout))
		for _, m := range day.Messages {
			b.bold(m.Timestamp().Format(timeLayout))
			b.paragraph(m.Content())
			b.rule()
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.sections, nil
}

// builder stops at the first invalid section so offsets are never computed
// over a partial sequence.
type builder struct {
	sections []Section
	err      error
}

func (b *builder) add(s Section, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	b.sections = append(b.sections, s)
}

func (b *builder) heading(level int, text string) {
	b.add(NewHeading(level, text))
}

func (b *builder) metadata(label, value string) {
	b.add(NewMetadata(label, value))
}

func (b *builder) rule() {
	b.add(NewHorizontalRule(), nil)
}

func (b *builder) bold(text string) {
	b.add(NewBoldText(text))
}

func (b *builder) paragraph(text string) {
	b.add(NewParagraph(text))
}
