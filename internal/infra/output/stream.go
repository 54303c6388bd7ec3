package output

// pcmStream is a beep.Streamer fed from a bounded queue of stereo chunks.
// The mixer side never blocks: an empty queue yields silence.
type pcmStream struct {
	queue   chan [][2]float64
	current [][2]float64
}

func newPCMStream(blocks int) *pcmStream {
	return &pcmStream{queue: make(chan [][2]float64, max(blocks, 1))}
}

// push enqueues a chunk, blocking while the queue is full.
func (s *pcmStream) push(frames [][2]float64) {
	s.queue <- frames
}

// Stream fills samples from queued chunks and pads an underrun with silence.
func (s *pcmStream) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if len(s.current) == 0 {
			select {
			case next := <-s.queue:
				s.current = next
				continue
			default:
			}
			clear(samples[filled:])
			break
		}
		n := copy(samples[filled:], s.current)
		s.current = s.current[n:]
		filled += n
	}
	return len(samples), true
}

func (s *pcmStream) Err() error {
	return nil
}

// drain discards queued chunks.
func (s *pcmStream) drain() {
	s.current = nil
	for {
		select {
		case <-s.queue:
		default:
			return
		}
	}
}
