package gpu

import (
	"fmt"
	"sync/atomic"
)

// SkipReason explains why a tick produced no frame.
type SkipReason int

const (
	// SkipUncompiled means the context has no pipeline.
	SkipUncompiled SkipReason = iota

	// SkipNoDrawable means the surface had no drawable for this tick.
	SkipNoDrawable

	// SkipBackpressure means MaxFramesInFlight frames were still pending.
	SkipBackpressure

	// SkipEncode means a per-frame object could not be created or encoded.
	SkipEncode

	// SkipSubmit means the queue rejected the command buffer.
	SkipSubmit

	// SkipReleased means the renderer was released.
	SkipReleased

	numSkipReasons
)

// String returns the string representation of SkipReason.
func (r SkipReason) String() string {
	switch r {
	case SkipUncompiled:
		return "Uncompiled"
	case SkipNoDrawable:
		return "NoDrawable"
	case SkipBackpressure:
		return "Backpressure"
	case SkipEncode:
		return "Encode"
	case SkipSubmit:
		return "Submit"
	case SkipReleased:
		return "Released"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// Stats is a snapshot of a renderer's frame counters.
type Stats struct {
	// Submitted is the number of frames submitted and presented.
	Submitted uint64

	// Retired is the number of submitted frames the GPU has completed.
	Retired uint64

	// InFlight is the number of submitted frames not yet retired.
	InFlight int

	// Skipped counts skipped ticks per reason, indexed by SkipReason.
	Skipped [numSkipReasons]uint64
}

// TotalSkipped returns the number of skipped ticks for all reasons.
func (s Stats) TotalSkipped() uint64 {
	var n uint64
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// Ticks returns the number of Render calls the snapshot covers.
func (s Stats) Ticks() uint64 {
	return s.Submitted + s.TotalSkipped()
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("Frames[%d submitted, %d retired, %d in flight, %d skipped]",
		s.Submitted, s.Retired, s.InFlight, s.TotalSkipped())
}

// counters are the live atomic counterparts of Stats.
type counters struct {
	submitted atomic.Uint64
	retired   atomic.Uint64
	inFlight  atomic.Int64
	skipped   [numSkipReasons]atomic.Uint64
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Submitted: c.submitted.Load(),
		Retired:   c.retired.Load(),
		InFlight:  int(c.inFlight.Load()),
	}
	for i := range c.skipped {
		s.Skipped[i] = c.skipped[i].Load()
	}
	return s
}
