// Package print writes a human-readable line per snapshot, for running the
// clock in a terminal.
package print

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vk/prayerclock/internal/citation"
	"github.com/vk/prayerclock/internal/model"
)

// Printer is an engine publisher writing to an io.Writer.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// New returns a printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Name identifies the printer in publisher logs.
func (p *Printer) Name() string { return "print" }

// PublishSnapshot prints the day, the active hour and its content.
func (p *Printer) PublishSnapshot(_ context.Context, snap *model.Snapshot) error {
	cur := snap.CurrentHour
	loc := snap.GeneratedAt.Location()

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.out, "%s  %s (%s)  %s %s of %s [%s-%s]  focus: %s\n",
		snap.GeneratedAt.Format(time.DateTime),
		snap.DayInfo.Weekday, snap.DayInfo.PlanetLabel,
		cur.Emoji, cur.IndexLabel, cur.PlanetLabel,
		cur.Start.In(loc).Format(time.Kitchen), cur.End.In(loc).Format(time.Kitchen),
		cur.FocusAreaLabel,
	)
	if err != nil {
		return err
	}
	if err := p.citation("verse", cur.Verse); err != nil {
		return err
	}
	if err := p.citation("proverb", cur.Proverb); err != nil {
		return err
	}
	if cur.Declaration != nil {
		if _, err := fmt.Fprintf(p.out, "      declaration = %q\n", *cur.Declaration); err != nil {
			return err
		}
	}
	next := snap.NextHour
	_, err = fmt.Fprintf(p.out, "      next = %s of %s at %s\n", next.IndexLabel, next.PlanetLabel, next.Start.In(loc).Format(time.Kitchen))
	return err
}

// PublishError prints the notice.
func (p *Printer) PublishError(_ context.Context, notice model.ErrorNotice) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.out, "error: %s\n", notice.Message)
	return err
}

func (p *Printer) citation(label string, c *citation.Citation) error {
	if c == nil {
		_, err := fmt.Fprintf(p.out, "      %s = (null)\n", label)
		return err
	}
	_, err := fmt.Fprintf(p.out, "      %s = %s %q\n", label, c.Reference, c.Text)
	return err
}
