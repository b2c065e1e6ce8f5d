// Package domain contains core concepts of the chat archiver.
// This file defines chat messages and their content-addressed identity.
// Messages are immutable and validated by the domain.
package domain

import (
	"chat-archiver/errors"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ContentHash is the SHA-256 digest of a message content.
type ContentHash [sha256.Size]byte

func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(raw) != sha256.Size {
		return h, fmt.Errorf("content hash must be %d bytes, got %d", sha256.Size, len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// HashContent is deterministic: identical content always yields identical bytes.
func HashContent(content string) ContentHash {
	return sha256.Sum256([]byte(content))
}

// MessageID identifies a message by when it was sent and what it says.
// An edited message (same timestamp, new content) is a different message.
type MessageID struct {
	Timestamp   time.Time
	ContentHash ContentHash
}

func DeriveID(timestamp time.Time, content string) (MessageID, error) {
	if content == "" {
		return MessageID{}, errors.NewValidationError("content", "identity cannot be derived from empty content", errors.ErrEmptyContent)
	}
	return MessageID{Timestamp: timestamp, ContentHash: HashContent(content)}, nil
}

func (id MessageID) Equal(other MessageID) bool {
	return id.Timestamp.Equal(other.Timestamp) && id.ContentHash == other.ContentHash
}

// Key is formatted as "{seconds}.{nanos}:{hash}" so identities sort
// chronologically and can be used as map keys regardless of time zone.
// Seconds have their sign bit flipped so instants before 1970 sort first,
// which covers every year time.Time can represent.
func (id MessageID) Key() string {
	seconds := uint64(id.Timestamp.Unix()) ^ (1 << 63)
	return fmt.Sprintf("%020d.%09d:%s", seconds, id.Timestamp.Nanosecond(), id.ContentHash)
}

func (id MessageID) String() string {
	return id.Key()
}

type messageInput struct {
	Timestamp time.Time `validate:"required"`
	Sender    string    `validate:"required"`
	Content   string    `validate:"required"`
}

// ChatMessage is a single parsed message. Its id is derived once at construction.
type ChatMessage struct {
	timestamp time.Time
	sender    string
	content   string
	id        MessageID
}

func NewChatMessage(timestamp time.Time, sender, content string) (ChatMessage, error) {
	if err := validate.Struct(messageInput{Timestamp: timestamp, Sender: sender, Content: content}); err != nil {
		return ChatMessage{}, toValidationError(err)
	}
	id, err := DeriveID(timestamp, content)
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{
		timestamp: timestamp,
		sender:    sender,
		content:   content,
		id:        id,
	}, nil
}

func (m ChatMessage) Timestamp() time.Time { return m.timestamp }
func (m ChatMessage) Sender() string       { return m.sender }
func (m ChatMessage) Content() string      { return m.content }
func (m ChatMessage) ID() MessageID        { return m.id }

func toValidationError(err error) error {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return errors.NewValidationError("message", err.Error(), err)
	}
	first := fieldErrors[0]
	var cause error
	switch first.Field() {
	case "Content":
		cause = errors.ErrEmptyContent
	case "Sender":
		cause = errors.ErrEmptySender
	}
	return errors.NewValidationError(first.Field(), fmt.Sprintf("failed on '%s' rule", first.Tag()), cause)
}
