package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ParsingMetadata describes how an export was produced.
type ParsingMetadata struct {
	SourceName   string
	Format       string
	MimeType     string
	Language     string
	TotalLines   int
	SkippedLines int
	ParsedAt     time.Time
}

// Predicate selects messages of an export.
type Predicate func(message ChatMessage) bool

func FromSender(sender string) Predicate {
	expected := strings.TrimSpace(sender)
	return func(message ChatMessage) bool {
		return strings.EqualFold(strings.TrimSpace(message.Sender()), expected)
	}
}

// InTimeRange matches timestamps in [from, to). A zero bound is open.
func InTimeRange(from, to time.Time) Predicate {
	return func(message ChatMessage) bool {
		at := message.Timestamp()
		if !from.IsZero() && at.Before(from) {
			return false
		}
		if !to.IsZero() && !at.Before(to) {
			return false
		}
		return true
	}
}

func ContentContains(fragment string) Predicate {
	needle := strings.ToLower(fragment)
	return func(message ChatMessage) bool {
		return strings.Contains(strings.ToLower(message.Content()), needle)
	}
}

func And(predicates ...Predicate) Predicate {
	return func(message ChatMessage) bool {
		for _, p := range predicates {
			if !p(message) {
				return false
			}
		}
		return true
	}
}

func Or(predicates ...Predicate) Predicate {
	return func(message ChatMessage) bool {
		for _, p := range predicates {
			if p(message) {
				return true
			}
		}
		return false
	}
}

func Not(predicate Predicate) Predicate {
	return func(message ChatMessage) bool {
		return !predicate(message)
	}
}

// ChatExport is an ordered, immutable set of messages.
// Every query returns copies; the internal slice is never exposed.
type ChatExport struct {
	id       uuid.UUID
	messages []ChatMessage
	metadata ParsingMetadata
}

// NewChatExport copies the messages and orders them chronologically.
// Messages sharing a timestamp keep their input order.
func NewChatExport(messages []ChatMessage, metadata ParsingMetadata) ChatExport {
	owned := make([]ChatMessage, len(messages))
	copy(owned, messages)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Timestamp().Before(owned[j].Timestamp())
	})
	return ChatExport{
		id:       uuid.New(),
		messages: owned,
		metadata: metadata,
	}
}

func (e ChatExport) ID() uuid.UUID             { return e.id }
func (e ChatExport) Metadata() ParsingMetadata { return e.metadata }
func (e ChatExport) Len() int                  { return len(e.messages) }

func (e ChatExport) Messages() []ChatMessage {
	out := make([]ChatMessage, len(e.messages))
	copy(out, e.messages)
	return out
}

// Filter keeps the export id and metadata so the result still points to the same source.
func (e ChatExport) Filter(predicate Predicate) ChatExport {
	return ChatExport{
		id: e.id,
		messages: lo.Filter(e.messages, func(m ChatMessage, _ int) bool {
			return predicate(m)
		}),
		metadata: e.metadata,
	}
}

// Senders lists distinct senders in order of first appearance.
func (e ChatExport) Senders() []string {
	return lo.Uniq(lo.Map(e.messages, func(m ChatMessage, _ int) string {
		return m.Sender()
	}))
}

func (e ChatExport) MessagesFrom(sender string) []ChatMessage {
	return e.Filter(FromSender(sender)).messages
}

func (e ChatExport) Between(from, to time.Time) []ChatMessage {
	return e.Filter(InTimeRange(from, to)).messages
}

// TimeSpan returns the first and last timestamps, false when empty.
func (e ChatExport) TimeSpan() (time.Time, time.Time, bool) {
	if len(e.messages) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return e.messages[0].Timestamp(), e.messages[len(e.messages)-1].Timestamp(), true
}
