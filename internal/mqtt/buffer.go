package mqtt

import "log"

// pendingMsg is a serialized message held for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer holds the most recent messages published while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use — caller must synchronize.
type ringBuffer struct {
	msgs    []pendingMsg
	next    int // next write position
	count   int
	dropped int // messages overwritten since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{msgs: make([]pendingMsg, capacity)}
}

func (r *ringBuffer) push(msg pendingMsg) {
	capacity := len(r.msgs)
	if r.count == capacity {
		if r.dropped == 0 {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", capacity)
		}
		r.dropped++
	} else {
		r.count++
	}
	r.msgs[r.next] = msg
	r.next = (r.next + 1) % capacity
}

// drain returns buffered messages oldest first and empties the buffer.
func (r *ringBuffer) drain() []pendingMsg {
	if r.count == 0 {
		return nil
	}

	capacity := len(r.msgs)
	oldest := (r.next - r.count + capacity) % capacity
	out := make([]pendingMsg, r.count)
	for i := range out {
		out[i] = r.msgs[(oldest+i)%capacity]
	}
	if r.dropped > 0 {
		log.Printf("mqtt: replaying %d buffered messages, %d dropped", r.count, r.dropped)
	}

	r.count = 0
	r.next = 0
	r.dropped = 0
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
