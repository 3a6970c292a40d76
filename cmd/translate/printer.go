package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"translation-agent/backend/internal/stream"
)

var stageTitles = map[string]string{
	stream.StageInitial:    "Initial translation",
	stream.StageReflect:    "Reflection",
	stream.StageImprove:    "Improved translation",
	stream.StageCompletion: "Completion",
}

// printer writes each stage buffer progressively, printing only the part
// not yet on screen.
type printer struct {
	out     io.Writer
	header  lipgloss.Style
	muted   lipgloss.Style
	stage   string
	printed int
	started bool
}

func newPrinter(out io.Writer) *printer {
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:    out,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#87ceeb")),
		muted:  r.NewStyle().Faint(true),
	}
}

func (p *printer) Update(stage, buffer string) {
	if stage != p.stage || len(buffer) < p.printed {
		if p.started {
			fmt.Fprint(p.out, "\n\n")
		}
		title, ok := stageTitles[stage]
		if !ok {
			title = stage
		}
		fmt.Fprintln(p.out, p.header.Render("## "+title))
		p.stage = stage
		p.printed = 0
		p.started = true
	}
	fmt.Fprint(p.out, buffer[p.printed:])
	p.printed = len(buffer)
}

func (p *printer) Finish(cached bool) {
	if !p.started {
		return
	}
	fmt.Fprintln(p.out)
	if cached {
		fmt.Fprintln(p.out, p.muted.Render("(cached)"))
	}
}
