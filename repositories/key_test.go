package repositories

import (
	"chat-archiver/domain"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestStoreKey(t *testing.T) {
	tests := []struct {
		description  string
		documentID   string
		senderFilter *string
		want         string
	}{
		{"Should use all when no filter", "doc-123", nil, "doc-123__all"},
		{"Should use all on blank filter", "doc-123", lo.ToPtr("  "), "doc-123__all"},
		{"Should fold sender case without suffix", "doc-123", lo.ToPtr(" ALICE "), "doc-123__alice"},
		{"Should suffix a sender whose spaces were replaced", "doc-123", lo.ToPtr("John Smith"), "doc-123__john_smith-9cd158d8"},
		{"Should suffix a document id whose case was folded", "DOC-123", lo.ToPtr("john-smith"), "doc-123__john-smith-f8e500cd"},
		{"Should strip path separators", "../../etc/passwd", lo.ToPtr("a/b\\c"), "etc_passwd__a_b_c-3edc7ab5"},
		{"Should collapse unsafe runs", "1AbC:dEf??", lo.ToPtr("Zoë  O'Neil"), "1abc_def__zo_o_neil-7653a1f2"},
		{"Should never be empty", "!!!", lo.ToPtr("???"), "____-fb188e9d"},
		{"Should keep a sender named all apart from no filter", "doc-123", lo.ToPtr("All"), "doc-123__all-f306002e"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.Equal(t, tt.want, StoreKey(tt.documentID, tt.senderFilter))
		})
	}
}

func TestStoreKey_SenderIsCaseInsensitive(t *testing.T) {
	require.Equal(t,
		StoreKey("Doc-123", lo.ToPtr("ALICE")),
		StoreKey("Doc-123", lo.ToPtr("alice")))
}

func TestStoreKey_KeepsDistinctDocumentsApart(t *testing.T) {
	tests := []struct {
		description string
		first       string
		second      string
	}{
		{"Should separate ids differing in case", "1AbC-xyz", "1abc-XYZ"},
		{"Should separate ids differing in punctuation", "doc.a", "doc_a"},
		{"Should separate a folded id from its lower case form", "Doc-123", "doc-123"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.NotEqual(t, StoreKey(tt.first, nil), StoreKey(tt.second, nil))
		})
	}
}

func TestStoreKey_TruncatesLongKeysKeepingThemDistinct(t *testing.T) {
	req := require.New(t)
	long := strings.Repeat("a", 200)

	first := StoreKey(long+"1", nil)
	second := StoreKey(long+"2", nil)

	req.LessOrEqual(len(first), maxKeyLength)
	req.LessOrEqual(len(second), maxKeyLength)
	req.NotEqual(first, second)
	req.True(strings.HasPrefix(first, "aaaa"))
	req.Equal(first, StoreKey(long+"1", nil))
}

func TestSameScope(t *testing.T) {
	checkpoint, err := domain.NewCheckpoint("1AbC-xyz", lo.ToPtr("John Smith"))
	require.NoError(t, err)

	tests := []struct {
		description  string
		documentID   string
		senderFilter *string
		want         bool
	}{
		{"Should match the exact scope", "1AbC-xyz", lo.ToPtr("John Smith"), true},
		{"Should match a sender in another case", "1AbC-xyz", lo.ToPtr(" john smith "), true},
		{"Should refuse a document id in another case", "1abc-XYZ", lo.ToPtr("John Smith"), false},
		{"Should refuse another sender", "1AbC-xyz", lo.ToPtr("Bob"), false},
		{"Should refuse the unfiltered scope", "1AbC-xyz", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.Equal(t, tt.want, sameScope(checkpoint, tt.documentID, tt.senderFilter))
		})
	}
}
