// Package parser reads chat exports from disk.
package parser

import (
	"bufio"
	"chat-archiver/contract"
	"chat-archiver/domain"
	"chat-archiver/errors"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/gabriel-vasile/mimetype"
)

const (
	FormatAndroid = "whatsapp-android"
	FormatIOS     = "whatsapp-ios"
	FormatUnknown = "unknown"

	DefaultDateLayout = "02/01/2006"

	sniffSize             = 512
	maxLineSize           = 1024 * 1024
	cancelCheckInterval   = 1024
	languageSampleSize    = 4096
	minLanguageConfidence = 0.3
	senderSeparator       = ": "
	// Direction marks and BOMs that exports put in front of lines.
	invisiblePrefix = "\ufeff\u200e\u200f"
)

var (
	// 14/12/2024, 09:15 - Alice: Good morning
	androidHeader = regexp.MustCompile(`^(\d{1,4}[./-]\d{1,2}[./-]\d{1,4}),? (\d{1,2}:\d{2}(?::\d{2})?) - (.*)$`)
	// [14/12/2024, 09:15:30] Alice: Good morning
	iosHeader = regexp.MustCompile(`^\[(\d{1,4}[./-]\d{1,2}[./-]\d{1,4}),? (\d{1,2}:\d{2}(?::\d{2})?)\] (.*)$`)
)

type WhatsAppParser struct {
	log        *slog.Logger
	dateLayout string
	location   *time.Location
	now        func() time.Time
}

var _ contract.IExportParser = (*WhatsAppParser)(nil)

// NewWhatsAppParser reads dates with dateLayout (DefaultDateLayout when
// empty) in location (time.Local when nil).
func NewWhatsAppParser(log *slog.Logger, dateLayout string, location *time.Location) *WhatsAppParser {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	if location == nil {
		location = time.Local
	}
	return &WhatsAppParser{log: log, dateLayout: dateLayout, location: location, now: time.Now}
}

func (p *WhatsAppParser) Parse(ctx context.Context, path string) (domain.ChatExport, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.ChatExport{}, fmt.Errorf("open export: %w", err)
	}
	defer file.Close()

	sniffBuf := make([]byte, sniffSize)
	n, err := io.ReadFull(file, sniffBuf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return domain.ChatExport{}, fmt.Errorf("sniff export: %w", err)
	}
	mimeType := "text/plain"
	if n > 0 {
		detected := mimetype.Detect(sniffBuf[:n])
		if !isPlainText(detected) {
			p.log.Warn("Export rejected", "path", path, "mime_type", detected.String())
			return domain.ChatExport{}, fmt.Errorf("%s is %s: %w", path, detected.String(), errors.ErrNotPlainText)
		}
		mimeType = detected.String()
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return domain.ChatExport{}, fmt.Errorf("rewind export: %w", err)
	}
	export, err := p.ParseReader(ctx, filepath.Base(path), file)
	if err != nil {
		return domain.ChatExport{}, err
	}
	metadata := export.Metadata()
	metadata.MimeType = mimeType
	return domain.NewChatExport(export.Messages(), metadata), nil
}

// ParseReader parses an export already opened by the caller. Lines that
// follow a message header without one of their own continue that message.
func (p *WhatsAppParser) ParseReader(ctx context.Context, source string, r io.Reader) (domain.ChatExport, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	state := parseState{format: FormatUnknown}
	for scanner.Scan() {
		state.total++
		if state.total%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return domain.ChatExport{}, err
			}
		}
		p.consume(&state, strings.TrimLeft(scanner.Text(), invisiblePrefix))
	}
	if err := scanner.Err(); err != nil {
		return domain.ChatExport{}, fmt.Errorf("read export %s: %w", source, err)
	}
	if err := ctx.Err(); err != nil {
		return domain.ChatExport{}, err
	}
	p.flush(&state)

	metadata := domain.ParsingMetadata{
		SourceName:   source,
		Format:       state.format,
		MimeType:     "text/plain",
		Language:     detectLanguage(state.messages),
		TotalLines:   state.total,
		SkippedLines: state.skipped,
		ParsedAt:     p.now(),
	}
	p.log.Debug("Export parsed", "source", source, "format", metadata.Format,
		"messages", len(state.messages), "lines", metadata.TotalLines, "skipped", metadata.SkippedLines)
	return domain.NewChatExport(state.messages, metadata), nil
}

type pendingMessage struct {
	timestamp time.Time
	sender    string
	lines     []string
}

type parseState struct {
	format   string
	messages []domain.ChatMessage
	pending  *pendingMessage
	total    int
	skipped  int
}

func (p *WhatsAppParser) consume(state *parseState, line string) {
	format, date, clock, body, ok := matchHeader(line)
	if !ok {
		if state.pending == nil {
			state.skipped++
			return
		}
		state.pending.lines = append(state.pending.lines, line)
		return
	}

	p.flush(state)
	timestamp, err := p.parseTimestamp(date, clock)
	if err != nil {
		p.log.Debug("Unreadable message date", "line", state.total, "error", err)
		state.skipped++
		return
	}
	if state.format == FormatUnknown {
		state.format = format
	}
	sender, content, found := strings.Cut(body, senderSeparator)
	if !found || strings.TrimSpace(sender) == "" {
		// Encryption notices, joins, subject changes.
		state.skipped++
		return
	}
	state.pending = &pendingMessage{timestamp: timestamp, sender: strings.TrimSpace(sender), lines: []string{content}}
}

func (p *WhatsAppParser) flush(state *parseState) {
	if state.pending == nil {
		return
	}
	pending := state.pending
	state.pending = nil
	message, err := domain.NewChatMessage(pending.timestamp, pending.sender, strings.Join(pending.lines, "\n"))
	if err != nil {
		p.log.Debug("Message dropped", "sender", pending.sender, "error", err)
		state.skipped += len(pending.lines)
		return
	}
	state.messages = append(state.messages, message)
}

// parseTimestamp reads clocks with or without seconds and with one or two
// hour digits.
func (p *WhatsAppParser) parseTimestamp(date, clock string) (time.Time, error) {
	if strings.Count(clock, ":") == 1 {
		clock += ":00"
	}
	if len(clock) == len("9:04:05") {
		clock = "0" + clock
	}
	return time.ParseInLocation(p.dateLayout+" 15:04:05", date+" "+clock, p.location)
}

func matchHeader(line string) (format, date, clock, body string, ok bool) {
	if m := androidHeader.FindStringSubmatch(line); m != nil {
		return FormatAndroid, m[1], m[2], m[3], true
	}
	if m := iosHeader.FindStringSubmatch(line); m != nil {
		return FormatIOS, m[1], m[2], strings.TrimLeft(m[3], invisiblePrefix), true
	}
	return "", "", "", "", false
}

func isPlainText(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func detectLanguage(messages []domain.ChatMessage) string {
	var sample strings.Builder
	for _, message := range messages {
		if sample.Len() >= languageSampleSize {
			break
		}
		sample.WriteString(message.Content())
		sample.WriteString(" ")
	}
	if sample.Len() == 0 {
		return ""
	}
	info := whatlanggo.Detect(sample.String())
	if info.Confidence < minLanguageConfidence {
		return ""
	}
	return info.Lang.Iso6391()
}
