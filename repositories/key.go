package repositories

import (
	"chat-archiver/domain"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	allSenders     = "all"
	keySeparator   = "__"
	maxKeyLength   = 120
	hashSuffixSize = 8
)

// StoreKey derives a path-safe key from a document id and an optional sender
// filter, restricted to [a-z0-9_-]. Sender filters are case-insensitive,
// document ids are not: whenever sanitizing loses information, or the key is
// longer than maxKeyLength, a short hash of the exact input is appended so
// distinct scopes never share a key.
func StoreKey(documentID string, senderFilter *string) string {
	sender := normalizeSender(senderFilter)
	documentPart, senderPart := sanitize(documentID), allSenders
	exact := documentPart == documentID
	if sender != "" {
		senderPart = sanitize(sender)
		// A sender literally named "all" must not share the unfiltered key.
		exact = exact && senderPart == sender && sender != allSenders
	}
	key := documentPart + keySeparator + senderPart
	if exact && len(key) <= maxKeyLength {
		return key
	}
	sum := sha256.Sum256([]byte(documentID + "\x00" + sender))
	suffix := hex.EncodeToString(sum[:])[:hashSuffixSize]
	if len(key) > maxKeyLength-hashSuffixSize-1 {
		key = strings.TrimRight(key[:maxKeyLength-hashSuffixSize-1], "_-")
	}
	return key + "-" + suffix
}

// normalizeSender folds a filter the way sender matching does. No filter and a
// blank one both mean every sender and give "".
func normalizeSender(senderFilter *string) string {
	if senderFilter == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*senderFilter))
}

// sameScope reports whether a stored checkpoint belongs to the requested
// document and sender filter.
func sameScope(checkpoint domain.ProcessingCheckpoint, documentID string, senderFilter *string) bool {
	return checkpoint.DocumentID() == documentID &&
		normalizeSender(checkpoint.SenderFilter()) == normalizeSender(senderFilter)
}

func sanitize(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "_"
	}
	return out
}
