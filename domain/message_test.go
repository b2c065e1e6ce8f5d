package domain

import (
	"chat-archiver/errors"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashContent_IsDeterministic(t *testing.T) {
	req := require.New(t)
	first := HashContent("Good morning!")
	second := HashContent("Good morning!")
	req.Equal(first, second)
	req.Equal(first[:], second[:])
	req.Len(first.String(), 64)
}

func TestDeriveID_IgnoresRunButNotTimestamp(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 12, 14, 9, 15, 0, 0, time.UTC)

	first, err := DeriveID(at, "Good morning!")
	req.NoError(err)
	second, err := DeriveID(at, "Good morning!")
	req.NoError(err)
	req.True(first.Equal(second))
	req.Equal(first.Key(), second.Key())

	later, err := DeriveID(at.Add(time.Minute), "Good morning!")
	req.NoError(err)
	req.False(first.Equal(later))
	req.Equal(first.ContentHash, later.ContentHash)

	edited, err := DeriveID(at, "Good morning!!")
	req.NoError(err)
	req.False(first.Equal(edited))
}

func TestDeriveID_SameInstantInOtherZoneIsEqual(t *testing.T) {
	req := require.New(t)
	utc := time.Date(2024, 12, 14, 9, 15, 0, 0, time.UTC)
	paris := utc.In(time.FixedZone("CET", 3600))

	a, err := DeriveID(utc, "hello")
	req.NoError(err)
	b, err := DeriveID(paris, "hello")
	req.NoError(err)
	req.True(a.Equal(b))
	req.Equal(a.Key(), b.Key())
}

func TestDeriveID_RejectsEmptyContent(t *testing.T) {
	req := require.New(t)
	_, err := DeriveID(time.Now(), "")
	req.Error(err)
	req.True(errors.IsValidation(err))
	req.True(stderrors.Is(err, errors.ErrEmptyContent))
}

func TestParseContentHash(t *testing.T) {
	req := require.New(t)
	hash := HashContent("Just checking in.")

	parsed, err := ParseContentHash(hash.String())
	req.NoError(err)
	req.Equal(hash, parsed)

	_, err = ParseContentHash("abcd")
	req.Error(err)
	_, err = ParseContentHash("not-hex")
	req.Error(err)
}

func TestNewChatMessage(t *testing.T) {
	at := time.Date(2024, 12, 14, 9, 15, 0, 0, time.UTC)

	tests := []struct {
		description string
		timestamp   time.Time
		sender      string
		content     string
		wantErr     bool
		cause       error
	}{
		{"Should succeed with valid data", at, "John Smith", "Good morning!", false, nil},
		{"Should keep internal line breaks", at, "John Smith", "line one\nline two", false, nil},
		{"Should fail if content is empty", at, "John Smith", "", true, errors.ErrEmptyContent},
		{"Should fail if sender is empty", at, "", "Good morning!", true, errors.ErrEmptySender},
		{"Should fail if timestamp is zero-value", time.Time{}, "John Smith", "Good morning!", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			message, err := NewChatMessage(tt.timestamp, tt.sender, tt.content)
			if tt.wantErr {
				req.True(errors.IsValidation(err))
				if tt.cause != nil {
					req.ErrorIs(err, tt.cause)
				}
				return
			}
			req.NoError(err)
			req.Equal(tt.sender, message.Sender())
			req.Equal(tt.content, message.Content())
			req.Equal(tt.timestamp, message.Timestamp())

			expected, err := DeriveID(tt.timestamp, tt.content)
			req.NoError(err)
			req.True(expected.Equal(message.ID()))
		})
	}
}
