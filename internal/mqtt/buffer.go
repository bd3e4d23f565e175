package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO holding messages published while the
// broker is unreachable. The oldest message is overwritten when full.
// Not safe for concurrent use; RealPublisher holds its mutex around it.
type ringBuffer struct {
	msgs    []bufferedMsg
	next    int // write position
	count   int
	dropped int  // messages overwritten since the last drain
	warned  bool // overflow logged since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{msgs: make([]bufferedMsg, capacity)}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == len(r.msgs) {
		if !r.warned {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", len(r.msgs))
			r.warned = true
		}
		r.dropped++
		r.count--
	}
	r.msgs[r.next] = msg
	r.next = (r.next + 1) % len(r.msgs)
	r.count++
}

// drain returns buffered messages oldest first and empties the buffer,
// along with how many were lost to overflow.
func (r *ringBuffer) drain() ([]bufferedMsg, int) {
	dropped := r.dropped
	if r.count == 0 {
		r.dropped = 0
		r.warned = false
		return nil, dropped
	}

	out := make([]bufferedMsg, 0, r.count)
	start := (r.next - r.count + len(r.msgs)) % len(r.msgs)
	for i := 0; i < r.count; i++ {
		out = append(out, r.msgs[(start+i)%len(r.msgs)])
	}

	r.next = 0
	r.count = 0
	r.dropped = 0
	r.warned = false
	return out, dropped
}

func (r *ringBuffer) len() int {
	return r.count
}
