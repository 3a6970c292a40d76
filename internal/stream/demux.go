package stream

import (
	"errors"
	"strings"
)

// Demuxer splits an event sequence into one buffer per stage.
type Demuxer struct {
	buffers  map[string]*strings.Builder
	current  string
	complete bool
	cached   bool
	errMsg   string
	failed   bool
}

func NewDemuxer() *Demuxer {
	return &Demuxer{buffers: make(map[string]*strings.Builder)}
}

// Apply folds ev into the buffers and returns the stage whose buffer
// changed, or "" when none did.
func (d *Demuxer) Apply(ev Event) string {
	switch ev.Type {
	case EventStage:
		if !IsStage(ev.Stage) {
			return ""
		}
		d.buffers[ev.Stage] = &strings.Builder{}
		d.current = ev.Stage
		d.cached = d.cached || ev.Cached
		return ev.Stage
	case EventChunk:
		// Text before the first stage marker has no buffer.
		if d.current == "" || ev.Text == "" {
			return ""
		}
		d.buffers[d.current].WriteString(ev.Text)
		return d.current
	case EventComplete:
		d.complete = true
	case EventError:
		d.failed = true
		d.errMsg = ev.Text
	}
	return ""
}

// Buffer returns the accumulated text of stage.
func (d *Demuxer) Buffer(stage string) string {
	if b, ok := d.buffers[stage]; ok {
		return b.String()
	}
	return ""
}

// Current returns the stage receiving chunks.
func (d *Demuxer) Current() string { return d.current }

// Complete reports whether the complete event was seen.
func (d *Demuxer) Complete() bool { return d.complete }

// Cached reports whether any stage was replayed from the cache.
func (d *Demuxer) Cached() bool { return d.cached }

// Err returns the in-band error reported by the server, if any.
func (d *Demuxer) Err() error {
	if !d.failed {
		return nil
	}
	if d.errMsg == "" {
		return errors.New("translation failed")
	}
	return errors.New(d.errMsg)
}
