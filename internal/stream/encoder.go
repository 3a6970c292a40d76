package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Wire formats.
const (
	FormatSSE  = "sse"
	FormatText = "text"
)

const (
	ContentTypeSSE  = "text/event-stream"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Encoder writes events to a response body.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, ev Event) error
}

// NewEncoder returns the encoder for format. Unknown formats fall back to SSE.
func NewEncoder(format string) Encoder {
	if format == FormatText {
		return textEncoder{}
	}
	return sseEncoder{}
}

// NegotiateFormat picks the wire format from an explicit format parameter,
// then the Accept header. SSE is the default.
func NegotiateFormat(format, accept string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "plain":
		return FormatText
	case FormatSSE:
		return FormatSSE
	}
	if strings.Contains(accept, "text/plain") && !strings.Contains(accept, ContentTypeSSE) {
		return FormatText
	}
	return FormatSSE
}

type sseEncoder struct{}

func (sseEncoder) ContentType() string { return ContentTypeSSE }

func (sseEncoder) Encode(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}

// textEncoder writes the line-oriented format: markers on their own line,
// chunks raw.
type textEncoder struct{}

func (textEncoder) ContentType() string { return ContentTypeText }

func (textEncoder) Encode(w io.Writer, ev Event) error {
	var err error
	switch ev.Type {
	case EventStage:
		_, err = fmt.Fprintf(w, "\n%s\n", ev.Stage)
	case EventChunk:
		_, err = io.WriteString(w, ev.Text)
	case EventComplete:
		_, err = io.WriteString(w, "\ncomplete\n")
	case EventError:
		_, err = fmt.Fprintf(w, "\nerror\n%s\n", ev.Text)
	}
	return err
}
