package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// Frames contains all frame events that were published.
	Frames []FrameEvent

	// Cursors contains all cursor events that were published.
	Cursors []CursorEvent

	// Payloads contains the JSON payloads of frame and cursor events, in
	// publish order.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishFrame and PublishCursor.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishFrame records the frame event.
func (f *FakePublisher) PublishFrame(event FrameEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatFramePayload(event)
	if err != nil {
		return err
	}
	f.Frames = append(f.Frames, event)
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishCursor records the cursor event.
func (f *FakePublisher) PublishCursor(event CursorEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatCursorPayload(event)
	if err != nil {
		return err
	}
	f.Cursors = append(f.Cursors, event)
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.Frames = nil
	f.Cursors = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
