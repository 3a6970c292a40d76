package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go/packages/ssestream"
)

// Decoder reads events from a response body.
type Decoder interface {
	Next() bool
	Event() Event
	Err() error
	Close() error
}

// NewDecoder picks a decoder from the response Content-Type.
func NewDecoder(res *http.Response) Decoder {
	if strings.HasPrefix(res.Header.Get("Content-Type"), ContentTypeSSE) {
		return NewSSEDecoder(res)
	}
	return NewTextDecoder(res.Body)
}

// SSEDecoder decodes the event-stream format.
type SSEDecoder struct {
	dec ssestream.Decoder
	cur Event
	err error
}

func NewSSEDecoder(res *http.Response) *SSEDecoder {
	return &SSEDecoder{dec: ssestream.NewDecoder(res)}
}

func (d *SSEDecoder) Next() bool {
	if d.err != nil || d.dec == nil {
		return false
	}
	for d.dec.Next() {
		raw := d.dec.Event()
		if len(strings.TrimSpace(string(raw.Data))) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw.Data, &ev); err != nil {
			d.err = fmt.Errorf("decode %s event: %w", raw.Type, err)
			return false
		}
		if ev.Type == "" {
			ev.Type = EventType(raw.Type)
		}
		d.cur = ev
		return true
	}
	d.err = d.dec.Err()
	return false
}

func (d *SSEDecoder) Event() Event { return d.cur }

func (d *SSEDecoder) Err() error { return d.err }

func (d *SSEDecoder) Close() error {
	if d.dec == nil {
		return nil
	}
	return d.dec.Close()
}

// TextDecoder decodes the line-oriented format. Blank lines are skipped and
// body lines within a stage are re-joined with "\n".
type TextDecoder struct {
	rc        io.ReadCloser
	scn       *bufio.Scanner
	cur       Event
	stage     string
	lines     int
	wantError bool
	err       error
}

func NewTextDecoder(rc io.ReadCloser) *TextDecoder {
	scn := bufio.NewScanner(rc)
	scn.Buffer(nil, bufio.MaxScanTokenSize<<6)
	return &TextDecoder{rc: rc, scn: scn}
}

func (d *TextDecoder) Next() bool {
	if d.err != nil {
		return false
	}
	for d.scn.Scan() {
		line := strings.TrimSuffix(d.scn.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if d.wantError {
			d.wantError = false
			d.cur = ErrorEvent(line)
			return true
		}
		switch {
		case IsStage(line):
			d.stage = line
			d.lines = 0
			d.cur = StageEvent(line, false)
		case line == string(EventComplete):
			d.cur = CompleteEvent()
		case line == string(EventError):
			d.wantError = true
			continue
		default:
			if d.lines > 0 {
				line = "\n" + line
			}
			d.lines++
			d.cur = ChunkEvent(d.stage, line)
		}
		return true
	}
	d.err = d.scn.Err()
	// An error marker with no message line still ends the stream.
	if d.wantError && d.err == nil {
		d.wantError = false
		d.cur = ErrorEvent("")
		return true
	}
	return false
}

func (d *TextDecoder) Event() Event { return d.cur }

func (d *TextDecoder) Err() error { return d.err }

func (d *TextDecoder) Close() error { return d.rc.Close() }
