package main

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/sweeney/plotview/internal/capture"
	"github.com/sweeney/plotview/internal/config"
	"github.com/sweeney/plotview/internal/gpio"
	"github.com/sweeney/plotview/internal/mqtt"
	"github.com/sweeney/plotview/internal/plot"
	"github.com/sweeney/plotview/internal/status"
	"github.com/sweeney/plotview/internal/web"
)

// loop owns the view. Every input source is serialized through run's select,
// so nothing else may touch view or recorder.
type loop struct {
	view       *plot.View
	reader     gpio.Reader // nil when no lines are captured
	recorder   *capture.Recorder
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	heartbeat  time.Duration
	now        func() time.Time

	// recorded signals land in the view once every line has a baseline
	synced  bool
	frameID string

	fs         afero.Fs
	recordPath string // view is saved here on shutdown when set
}

func newLoop(view *plot.View, reader gpio.Reader, names []string, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, debounce, unit, heartbeat time.Duration, now func() time.Time) *loop {
	return &loop{
		view:       view,
		reader:     reader,
		recorder:   capture.NewRecorder(names, debounce, unit, now()),
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		heartbeat:  heartbeat,
		now:        now,
	}
}

func (l *loop) run(tick <-chan time.Time, inputs <-chan web.Request, sig <-chan os.Signal) error {
	l.refresh(l.now(), nil)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			l.publishSystem("SHUTDOWN", signalName)
			l.save()
			return nil

		case <-tick:
			l.sample(l.now())

		case req := <-inputs:
			t := l.now()
			var target *plot.Target
			var redraw plot.Redraw
			if req.Input.Kind == plot.InputPress {
				if tg, ok := l.view.PointerPress(req.Input.X, req.Input.Y); ok {
					target = &tg
					redraw = plot.RedrawCursor
				}
			} else {
				redraw = l.view.Apply(req.Input)
			}
			l.refresh(t, target)
			req.Respond(web.Result{Redraw: redraw, Target: target, FrameID: l.frameID})
		}
	}
}

// sample polls the lines, moves new transitions into the view and checks
// for a heartbeat.
func (l *loop) sample(t time.Time) {
	var levels []bool
	if l.reader != nil {
		var err error
		levels, err = l.reader.Read()
		if err != nil {
			log.Printf("gpio read error: %v", err)
			return
		}
	}

	events := l.recorder.Process(capture.Input{Levels: levels, Time: t})

	if !l.recorder.IsBaselined() {
		// Still waiting for baseline
		return
	}

	names := l.recorder.Names()
	if !l.synced {
		for i, name := range names {
			l.view.SetSignal(name, l.recorder.Signal(i))
		}
		l.synced = true
	}
	for _, ev := range events {
		log.Printf("transition: %s -> %s at %d", ev.Channel, levelString(ev.Level), ev.At)
		for i, name := range names {
			if name == ev.Channel {
				l.view.SetSignal(name, l.recorder.Signal(i))
			}
		}
	}

	if hb := l.recorder.CheckHeartbeat(t, l.heartbeat); hb != nil {
		log.Printf("heartbeat: uptime=%v rises=%d falls=%d", hb.Uptime, hb.Counts.Rises, hb.Counts.Falls)
		l.publishSystem("HEARTBEAT", "")
	}

	l.refresh(t, nil)
}

// refresh renders pending work, updates the tracker and publishes the
// result: a frame summary if the timeline changed, a cursor event if only
// the cursor moved.
func (l *loop) refresh(t time.Time, target *plot.Target) {
	l.updateTracker()

	pending := l.view.Pending()
	if pending == plot.RedrawNone {
		return
	}
	frame := l.view.Render()
	l.frameID = mqtt.NewFrameID()
	if l.tracker != nil {
		l.tracker.SetView(status.Describe(l.view, l.frameID, t, frame))
	}

	if pending&plot.RedrawTimeline != 0 {
		segments := 0
		for _, c := range frame.Commands {
			if c.Layer == plot.LayerSignal {
				segments++
			}
		}
		err := l.publisher.PublishFrame(mqtt.FrameEvent{
			Timestamp: t,
			FrameID:   l.frameID,
			Zoom:      l.view.Zoom(),
			Signals:   l.view.Names(),
			Segments:  segments,
			Matches:   frame.Matches,
		})
		if err != nil {
			// Don't crash on publish failure
			log.Printf("publish frame error: %v", err)
		}
		return
	}

	err := l.publisher.PublishCursor(mqtt.CursorEvent{
		Timestamp: t,
		FrameID:   l.frameID,
		Time:      l.view.PointOfInterest(),
		Target:    target,
	})
	if err != nil {
		log.Printf("publish cursor error: %v", err)
	}
}

func (l *loop) updateTracker() {
	if l.tracker == nil {
		return
	}
	l.tracker.SetCapture(l.recorder.IsBaselined(), l.recorder.CountsSnapshot())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func (l *loop) publishSystem(event, reason string) {
	se := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     event,
		Reason:    reason,
		Retained:  event != "HEARTBEAT",
	}
	if l.tracker != nil {
		l.updateTracker()
		se.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), event, reason)
	}
	if err := l.publisher.PublishSystem(se); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}

// save writes the view to the record path, if one is set.
func (l *loop) save() {
	if l.recordPath == "" || l.fs == nil {
		return
	}
	if err := config.Save(l.fs, l.recordPath, config.FromView(l.view)); err != nil {
		log.Printf("save view: %v", err)
		return
	}
	log.Printf("saved view to %s", l.recordPath)
}

func levelString(level bool) string {
	if level {
		return "high"
	}
	return "low"
}
