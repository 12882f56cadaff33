// Command viewdemo hosts embedded views headlessly: it creates views,
// performs a layout pass and drives every view from its own
// display-refresh ticker, then prints per-view frame statistics.
//
// Usage:
//
//	viewdemo [-backend vulkan|noop] [-views 2] [-fps 60] [-duration 3s]
//	         [-width 800] [-height 600] [-profile dir]
//
// Set EMBEDVIEW_LOG_LEVEL to debug, info, warn or error to enable logging.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/embedview"
	"github.com/gogpu/embedview/backend"
)

// placeholder is the size a view has before the host's first layout pass.
var placeholder = embedview.LayoutHint{Width: 16, Height: 9}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run renders for the requested duration and returns the process exit
// code. Deferred cleanup completes before it returns.
func run(args []string) int {
	fs := flag.NewFlagSet("viewdemo", flag.ContinueOnError)
	var (
		backendName = fs.String("backend", "", "GPU backend ("+strings.Join(backend.Available(), "|")+"); empty selects the default")
		views       = fs.Int("views", 2, "number of views")
		fps         = fs.Int("fps", 60, "display refresh rate")
		duration    = fs.Duration("duration", 3*time.Second, "how long to render")
		width       = fs.Int("width", 800, "view width after layout")
		height      = fs.Int("height", 600, "view height after layout")
		profileDir  = fs.String("profile", "", "write a CPU profile to this directory")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir)).Stop()
	}

	if l, ok := loggerFromEnv(); ok {
		embedview.SetLogger(l)
	}

	opts := []embedview.Option{embedview.WithOffscreenDrawables()}
	if *backendName != "" {
		opts = append(opts, embedview.WithBackend(*backendName))
	}
	f := embedview.NewFactory(opts...)
	defer f.Close()

	for id := 0; id < *views; id++ {
		f.Create(int64(id), nil, placeholder)
	}
	if err := f.InitErr(); err != nil {
		log.Printf("GPU unavailable, views will not draw: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	interval := time.Second / time.Duration(max(*fps, 1))
	g, ctx := errgroup.WithContext(ctx)

	// Layout pass: the host sizes views shortly after creating them.
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(4 * interval):
		}
		for _, id := range f.IDs() {
			f.OnLayoutChanged(id, *width, *height)
		}
		return nil
	})

	for _, id := range f.IDs() {
		v, _ := f.View(id)
		g.Go(func() error {
			return refresh(ctx, v, interval)
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("render loop: %v", err)
		return 1
	}

	for _, id := range f.IDs() {
		v, _ := f.View(id)
		var presented uint64
		if src := v.Offscreen(); src != nil {
			presented = src.Presented()
		}
		log.Printf("view %d: %v, presented %d", id, v.Stats(), presented)
	}
	return 0
}

// refresh ticks v once per interval until ctx is done.
func refresh(ctx context.Context, v *embedview.View, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			v.Draw(now)
		}
	}
}

// loggerFromEnv builds a text logger at the level named by
// EMBEDVIEW_LOG_LEVEL.
func loggerFromEnv() (*slog.Logger, bool) {
	s := os.Getenv("EMBEDVIEW_LOG_LEVEL")
	if s == "" {
		return nil, false
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		log.Printf("ignoring EMBEDVIEW_LOG_LEVEL=%q: %v", s, err)
		return nil, false
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), true
}
