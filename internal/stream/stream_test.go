package stream_test

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"translation-agent/backend/internal/stream"
)

func encodeAll(t *testing.T, format string, events []stream.Event) *http.Response {
	t.Helper()
	enc := stream.NewEncoder(format)
	var buf bytes.Buffer
	for _, ev := range events {
		require.NoError(t, enc.Encode(&buf, ev))
	}
	header := http.Header{}
	header.Set("Content-Type", enc.ContentType())
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(&buf),
	}
}

func decodeAll(t *testing.T, res *http.Response) []stream.Event {
	t.Helper()
	dec := stream.NewDecoder(res)
	defer dec.Close()
	var out []stream.Event
	for dec.Next() {
		out = append(out, dec.Event())
	}
	require.NoError(t, dec.Err())
	return out
}

func translationRun() []stream.Event {
	return []stream.Event{
		stream.StageEvent(stream.StageInitial, false),
		stream.ChunkEvent(stream.StageInitial, "你"),
		stream.ChunkEvent(stream.StageInitial, "好"),
		stream.StageEvent(stream.StageReflect, false),
		stream.ChunkEvent(stream.StageReflect, "1. fine\n"),
		stream.ChunkEvent(stream.StageReflect, "2. also fine"),
		stream.StageEvent(stream.StageImprove, false),
		stream.ChunkEvent(stream.StageImprove, "你好！"),
		stream.CompleteEvent(),
	}
}

func TestSSE_RoundTrip(t *testing.T) {
	events := translationRun()
	got := decodeAll(t, encodeAll(t, stream.FormatSSE, events))
	require.Equal(t, events, got)
}

func TestSSE_StageNameInModelOutputIsPlainText(t *testing.T) {
	events := []stream.Event{
		stream.StageEvent(stream.StageInitial, false),
		stream.ChunkEvent(stream.StageInitial, "complete"),
		stream.ChunkEvent(stream.StageInitial, "\nreflectTranslation\n"),
		stream.CompleteEvent(),
	}

	d := stream.NewDemuxer()
	for _, ev := range decodeAll(t, encodeAll(t, stream.FormatSSE, events)) {
		d.Apply(ev)
	}
	require.Equal(t, "complete\nreflectTranslation\n", d.Buffer(stream.StageInitial))
	require.Empty(t, d.Buffer(stream.StageReflect))
	require.Equal(t, stream.StageInitial, d.Current())
	require.True(t, d.Complete())
}

func TestSSE_WireShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, stream.NewEncoder(stream.FormatSSE).Encode(&buf, stream.ChunkEvent(stream.StageReflect, "a\nb")))
	require.Equal(t, "event: chunk\ndata: {\"type\":\"chunk\",\"stage\":\"reflectTranslation\",\"text\":\"a\\nb\"}\n\n", buf.String())
}

func TestText_WireShape(t *testing.T) {
	res := encodeAll(t, stream.FormatText, []stream.Event{
		stream.StageEvent(stream.StageInitial, false),
		stream.ChunkEvent(stream.StageInitial, "Hal"),
		stream.ChunkEvent(stream.StageInitial, "lo"),
		stream.ErrorEvent("quota exceeded"),
	})
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "\ninitialTranslation\nHallo\nerror\nquota exceeded\n", string(body))
	require.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "text/plain"))
}

func TestText_DecodeJoinsLinesWithinStage(t *testing.T) {
	d := stream.NewDemuxer()
	for _, ev := range decodeAll(t, encodeAll(t, stream.FormatText, translationRun())) {
		d.Apply(ev)
	}
	require.Equal(t, "你好", d.Buffer(stream.StageInitial))
	require.Equal(t, "1. fine\n2. also fine", d.Buffer(stream.StageReflect))
	require.Equal(t, "你好！", d.Buffer(stream.StageImprove))
	require.True(t, d.Complete())
	require.NoError(t, d.Err())
}

func TestText_DecodeSkipsBlankLinesAndHandlesCRLF(t *testing.T) {
	body := "preamble\r\n\r\ninitialTranslation\r\n\r\nline one\r\n\r\nline two\r\ncomplete"
	res := &http.Response{Header: http.Header{}, Body: io.NopCloser(strings.NewReader(body))}

	d := stream.NewDemuxer()
	for _, ev := range decodeAll(t, res) {
		d.Apply(ev)
	}
	require.Equal(t, "line one\nline two", d.Buffer(stream.StageInitial))
	require.True(t, d.Complete())
}

func TestText_ErrorMarker(t *testing.T) {
	res := &http.Response{Header: http.Header{}, Body: io.NopCloser(strings.NewReader("initialTranslation\nabc\nerror\nboom\n"))}
	events := decodeAll(t, res)
	require.Equal(t, stream.ErrorEvent("boom"), events[len(events)-1])

	res = &http.Response{Header: http.Header{}, Body: io.NopCloser(strings.NewReader("error\n"))}
	events = decodeAll(t, res)
	require.Equal(t, []stream.Event{stream.ErrorEvent("")}, events)
}

func TestDemuxer(t *testing.T) {
	d := stream.NewDemuxer()

	require.Empty(t, d.Apply(stream.ChunkEvent("", "orphan")))
	require.Empty(t, d.Current())

	require.Equal(t, stream.StageInitial, d.Apply(stream.StageEvent(stream.StageInitial, true)))
	require.Equal(t, stream.StageInitial, d.Apply(stream.ChunkEvent(stream.StageInitial, "a")))
	require.Equal(t, stream.StageInitial, d.Apply(stream.ChunkEvent(stream.StageInitial, "b")))
	require.Equal(t, "ab", d.Buffer(stream.StageInitial))
	require.True(t, d.Cached())

	// A repeated stage marker resets its buffer.
	d.Apply(stream.StageEvent(stream.StageInitial, false))
	require.Empty(t, d.Buffer(stream.StageInitial))

	require.Empty(t, d.Apply(stream.StageEvent("bogus", false)))
	require.Equal(t, stream.StageInitial, d.Current())

	d.Apply(stream.ErrorEvent("provider failed"))
	require.EqualError(t, d.Err(), "provider failed")
	require.False(t, d.Complete())
}

func TestNegotiateFormat(t *testing.T) {
	require.Equal(t, stream.FormatSSE, stream.NegotiateFormat("", ""))
	require.Equal(t, stream.FormatText, stream.NegotiateFormat("text", ""))
	require.Equal(t, stream.FormatText, stream.NegotiateFormat("", "text/plain"))
	require.Equal(t, stream.FormatSSE, stream.NegotiateFormat("", "text/event-stream, text/plain"))
	require.Equal(t, stream.FormatSSE, stream.NegotiateFormat("SSE", "text/plain"))
}
