package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sweeney/plotview/internal/config"
	"github.com/sweeney/plotview/internal/gpio"
	"github.com/sweeney/plotview/internal/mqtt"
	"github.com/sweeney/plotview/internal/plot"
	"github.com/sweeney/plotview/internal/status"
	"github.com/sweeney/plotview/internal/web"
)

type serveOptions struct {
	file      string
	record    string
	httpAddr  string
	broker    string
	chip      string
	lines     []string
	activeLow bool
	poll      time.Duration
	debounce  time.Duration
	unit      time.Duration
	heartbeat time.Duration
}

func newServeCmd(fs afero.Fs) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live view over HTTP and publish frames to MQTT",
		Long: `Serve keeps one view in memory, optionally appends GPIO transitions to
it, and serves it over HTTP. Every re-render is published to MQTT.

Examples:
  # Serve a static view file
  plotview serve -f view.yaml --http :8080

  # Capture two lines in milliseconds and save them on shutdown
  plotview serve --line clk=17 --line data=27 --unit 1ms --record capture.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(fs, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "YAML view file to start from")
	flags.StringVar(&opts.record, "record", "", "Write the view to this file on shutdown")
	flags.StringVar(&opts.httpAddr, "http", ":8080", "HTTP address (empty to disable)")
	flags.StringVar(&opts.broker, "broker", "tcp://localhost:1883", "MQTT broker address")
	flags.StringVar(&opts.chip, "chip", gpio.DefaultChip, "GPIO chip")
	flags.StringArrayVar(&opts.lines, "line", nil, "GPIO line to capture as name=offset (repeatable)")
	flags.BoolVar(&opts.activeLow, "active-low", false, "Treat GPIO lines as active low")
	flags.DurationVar(&opts.poll, "poll", 10*time.Millisecond, "GPIO polling interval")
	flags.DurationVar(&opts.debounce, "debounce", 20*time.Millisecond, "Debounce duration")
	flags.DurationVar(&opts.unit, "unit", time.Millisecond, "Duration of one timeline unit for captured signals")
	flags.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")

	return cmd
}

func runServe(fs afero.Fs, opts serveOptions) error {
	view := plot.NewView(plot.DefaultGeometry())
	if opts.file != "" {
		f, err := config.Load(fs, opts.file)
		if err != nil {
			return err
		}
		if view, err = f.NewView(); err != nil {
			return err
		}
	}

	lines := make([]gpio.Line, 0, len(opts.lines))
	for _, s := range opts.lines {
		l, err := gpio.ParseLine(s)
		if err != nil {
			return err
		}
		lines = append(lines, l)
	}

	// Initialize GPIO
	var reader gpio.Reader
	if len(lines) > 0 {
		r, err := gpio.NewRealReader(opts.chip, lines, opts.activeLow)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer r.Close()
		reader = r
	}

	// Initialize MQTT
	hostname, _ := os.Hostname()
	publisher, err := mqtt.NewRealPublisher(opts.broker, "plotview-"+hostname)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		ViewFile:    opts.file,
		HTTPAddr:    opts.httpAddr,
		Broker:      opts.broker,
		Lines:       opts.lines,
		PollMs:      opts.poll.Milliseconds(),
		DebounceMs:  opts.debounce.Milliseconds(),
		HeartbeatMs: opts.heartbeat.Milliseconds(),
		Unit:        opts.unit.String(),
	})

	l := newLoop(view, reader, gpio.Names(lines), publisher, publisher, tracker, opts.debounce, opts.unit, opts.heartbeat, time.Now)
	l.fs = fs
	l.recordPath = opts.record

	// First frame, then a startup event carrying it
	l.refresh(time.Now(), nil)
	l.publishSystem("STARTUP", "")

	// Start HTTP server
	var inputs <-chan web.Request
	if opts.httpAddr != "" {
		queue := web.NewQueue(16)
		inputs = queue.C()
		srv := web.New(opts.httpAddr, tracker, queue)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http server listening on %s", opts.httpAddr)
	}

	log.Printf("started: signals=%s lines=%d poll=%v debounce=%v unit=%v broker=%s heartbeat=%v",
		strings.Join(view.Names(), ","), len(lines), opts.poll, opts.debounce, opts.unit, opts.broker, opts.heartbeat)

	ticker := time.NewTicker(opts.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return l.run(ticker.C, inputs, sigCh)
}
