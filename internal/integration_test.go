package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/plotview/internal/capture"
	"github.com/sweeney/plotview/internal/condition"
	"github.com/sweeney/plotview/internal/gpio"
	"github.com/sweeney/plotview/internal/mqtt"
	"github.com/sweeney/plotview/internal/plot"
	"github.com/sweeney/plotview/internal/status"
)

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

const pollInterval = 10 * time.Millisecond

// captureSamples: clk high, low from 30ms, high again from 150ms; data low
// throughout.
func captureSamples() [][]bool {
	var samples [][]bool
	for i := 0; i < 20; i++ {
		clk := i < 3 || i >= 15
		samples = append(samples, []bool{clk, false})
	}
	return samples
}

// flow mirrors the serve loop: sample, record, render, publish.
type flow struct {
	reader    gpio.Reader
	recorder  *capture.Recorder
	view      *plot.View
	publisher *mqtt.FakePublisher
	tracker   *status.Tracker
	synced    bool
}

func newFlow(t *testing.T, samples [][]bool) *flow {
	t.Helper()
	names := []string{"clk", "data"}
	view := plot.NewView(plot.DefaultGeometry())
	markers := []plot.Marker{
		{Label: "pulse", Spec: condition.StateLength(true, 100, 200), Color: "#ff0000"},
		{Label: "burst", Spec: condition.EdgeCount(2, 200), Color: "#008000"},
	}
	for _, m := range markers {
		if _, err := view.AddCondition(m); err != nil {
			t.Fatalf("AddCondition: %v", err)
		}
	}
	view.Render()
	return &flow{
		reader:    gpio.NewFakeReader(samples),
		recorder:  capture.NewRecorder(names, 20*time.Millisecond, time.Millisecond, startTime),
		view:      view,
		publisher: mqtt.NewFakePublisher(),
		tracker:   status.NewTracker(startTime, status.Config{Lines: []string{"clk=17", "data=27"}}),
	}
}

func (f *flow) step(t *testing.T, i int) {
	t.Helper()
	levels, err := f.reader.Read()
	if err != nil {
		t.Fatalf("sample %d: gpio read error: %v", i, err)
	}
	now := startTime.Add(time.Duration(i) * pollInterval)
	events := f.recorder.Process(capture.Input{Levels: levels, Time: now})
	if !f.recorder.IsBaselined() {
		return
	}
	names := f.recorder.Names()
	if !f.synced {
		for j, name := range names {
			f.view.SetSignal(name, f.recorder.Signal(j))
		}
		f.synced = true
	}
	for _, ev := range events {
		for j, name := range names {
			if name == ev.Channel {
				f.view.SetSignal(name, f.recorder.Signal(j))
			}
		}
	}

	f.tracker.SetCapture(true, f.recorder.CountsSnapshot())
	if f.view.Pending()&plot.RedrawTimeline == 0 {
		return
	}
	frame := f.view.Render()
	id := mqtt.NewFrameID()
	f.tracker.SetView(status.Describe(f.view, id, now, frame))
	err = f.publisher.PublishFrame(mqtt.FrameEvent{
		Timestamp: now,
		FrameID:   id,
		Zoom:      f.view.Zoom(),
		Signals:   f.view.Names(),
		Matches:   frame.Matches,
	})
	if err != nil {
		t.Logf("sample %d: publish error: %v", i, err)
	}
}

func (f *flow) run(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.step(t, i)
	}
}

// TestIntegrationFullFlow tests the complete flow from GPIO to MQTT using fakes.
func TestIntegrationFullFlow(t *testing.T) {
	samples := captureSamples()
	f := newFlow(t, samples)
	f.run(t, len(samples))

	// baseline, clk falls, clk rises
	if len(f.publisher.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(f.publisher.Frames))
	}

	clk, _ := f.view.Signal("clk")
	if got := clk.Transitions(); len(got) != 2 || got[0] != 30 || got[1] != 150 {
		t.Errorf("clk: expected [30 150], got %v", got)
	}
	data, _ := f.view.Signal("data")
	if got := data.Transitions(); len(got) != 1 || got[0] != 0 {
		t.Errorf("data: expected [0], got %v", got)
	}

	last := f.publisher.Frames[2]
	if len(last.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", last.Matches)
	}
	want := []plot.Match{
		{Lane: 0, Signal: "clk", Label: "pulse", Color: "#ff0000", From: 30, To: 150, Level: false},
		{Lane: 0, Signal: "clk", Label: "burst", Color: "#008000", From: 30, To: 150, Level: false},
	}
	for i := range want {
		if last.Matches[i] != want[i] {
			t.Errorf("match %d: got %+v, want %+v", i, last.Matches[i], want[i])
		}
	}

	// Verify JSON payloads
	for i, payload := range f.publisher.Payloads {
		var parsed mqtt.FramePayload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Frame.ID == "" {
			t.Errorf("payload %d: missing frame id", i)
		}
		if parsed.Frame.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
	}
}

// TestIntegrationNoFramesDuringBaseline verifies nothing is published while
// lines settle.
func TestIntegrationNoFramesDuringBaseline(t *testing.T) {
	samples := captureSamples()
	f := newFlow(t, samples)
	f.run(t, 2)

	if len(f.publisher.Frames) != 0 {
		t.Errorf("expected no frames during baseline, got %d", len(f.publisher.Frames))
	}
	if f.view.Len() != 0 {
		t.Errorf("expected no lanes before baseline, got %v", f.view.Names())
	}
}

// TestIntegrationStatusReflectsCapture checks the tracker after a capture.
func TestIntegrationStatusReflectsCapture(t *testing.T) {
	samples := captureSamples()
	f := newFlow(t, samples)
	f.run(t, len(samples))

	var parsed status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(f.tracker.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Capture == nil {
		t.Fatal("expected capture status")
	}
	if parsed.Status.Capture.Rises != 1 || parsed.Status.Capture.Falls != 1 {
		t.Errorf("expected 1 rise and 1 fall, got %+v", parsed.Status.Capture)
	}
	if parsed.Status.FrameID != f.publisher.Frames[2].FrameID {
		t.Errorf("tracker frame %q, last published %q", parsed.Status.FrameID, f.publisher.Frames[2].FrameID)
	}
	if len(parsed.Status.Signals) != 2 || parsed.Status.Signals[0].End != 150 {
		t.Errorf("unexpected signals %+v", parsed.Status.Signals)
	}
}

// TestIntegrationCursorAfterCapture locates a press on a captured lane.
func TestIntegrationCursorAfterCapture(t *testing.T) {
	samples := captureSamples()
	f := newFlow(t, samples)
	f.run(t, len(samples))

	m := f.view.Mapper()
	target, ok := f.view.PointerPress(m.X(100), m.LaneMid(1))
	if !ok {
		t.Fatal("expected press to hit lane 1")
	}
	if target.Signal != "data" || target.Time != 100 {
		t.Errorf("unexpected target %+v", target)
	}

	frame := f.view.Render()
	if frame.Redrawn != plot.RedrawCursor {
		t.Errorf("expected cursor-only redraw, got %v", frame.Redrawn)
	}
	// data has no transition after 0, so only clk's [30,150] interval is lit
	var cursor []plot.DrawCommand
	for _, c := range frame.Commands {
		if c.Layer == plot.LayerCursor {
			cursor = append(cursor, c)
		}
	}
	if len(cursor) != 1 || cursor[0].Lane != 0 || cursor[0].X0 != 30 || cursor[0].X1 != 150 {
		t.Errorf("unexpected cursor %+v", cursor)
	}
}

// TestIntegrationPublishFailureDoesNotCrash verifies capture continues when
// the broker rejects frames.
func TestIntegrationPublishFailureDoesNotCrash(t *testing.T) {
	samples := captureSamples()
	f := newFlow(t, samples)
	f.publisher.PublishError = errors.New("mqtt connection lost")
	f.run(t, len(samples))

	clk, _ := f.view.Signal("clk")
	if clk.Len() != 2 {
		t.Errorf("expected capture to continue, got %v", clk.Transitions())
	}
	if len(f.publisher.Frames) != 0 {
		t.Errorf("expected no recorded frames, got %d", len(f.publisher.Frames))
	}
}
