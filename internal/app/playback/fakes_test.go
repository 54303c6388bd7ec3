package playback

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/blackhand/internal/domain/audio"
)

var stereo44k = audio.Format{Rate: 44100, Channels: 2, Encoding: audio.EncodingSigned16}

// fakeDecoder yields blocks of a constant sample value.
type fakeDecoder struct {
	path      string
	format    audio.Format
	blockSize int
	value     int16
	delay     time.Duration

	blocks      int          // blocks before EOF, <0 for endless
	failAt      int          // read number returning an error, 0 to disable
	newFormatAt int          // read number returning ErrNewFormat, 0 to disable
	nextFormat  audio.Format // format reported after newFormatAt

	mu     sync.Mutex
	reads  int
	closed bool
}

func (d *fakeDecoder) Format() (audio.Format, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format, nil
}

func (d *fakeDecoder) BlockSize() int {
	return d.blockSize
}

func (d *fakeDecoder) Read(p []byte) (int, error) {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.reads++
	if d.failAt > 0 && d.reads == d.failAt {
		return 0, errors.New("corrupt frame")
	}
	if d.newFormatAt > 0 && d.reads == d.newFormatAt {
		d.format = d.nextFormat
		return 0, audio.ErrNewFormat
	}
	if d.blocks >= 0 && d.reads > d.blocks {
		return 0, io.EOF
	}

	n := len(p) &^ 1
	for i := 0; i < n; i += 2 {
		binary.LittleEndian.PutUint16(p[i:], uint16(d.value))
	}
	return n, nil
}

func (d *fakeDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDecoder) Reads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reads
}

func (d *fakeDecoder) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// fakeOutput records every call made by the worker.
type fakeOutput struct {
	openErr  error
	startErr error

	mu      sync.Mutex
	opened  bool
	starts  []audio.Format
	played  int
	pauses  int
	resumes int
	stops   int
	closed  bool
}

func (o *fakeOutput) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return o.openErr
	}
	o.opened = true
	return nil
}

func (o *fakeOutput) Start(f audio.Format) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.startErr != nil {
		return o.startErr
	}
	o.starts = append(o.starts, f)
	return nil
}

func (o *fakeOutput) Play(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.played += len(p)
	return len(p), nil
}

func (o *fakeOutput) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pauses++
	return nil
}

func (o *fakeOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resumes++
	return nil
}

func (o *fakeOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stops++
	return nil
}

func (o *fakeOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

// outputCalls is a point-in-time copy of the calls recorded by fakeOutput.
type outputCalls struct {
	opened  bool
	starts  []audio.Format
	played  int
	pauses  int
	resumes int
	stops   int
	closed  bool
}

func (o *fakeOutput) snapshot() outputCalls {
	o.mu.Lock()
	defer o.mu.Unlock()
	return outputCalls{
		opened:  o.opened,
		starts:  append([]audio.Format(nil), o.starts...),
		played:  o.played,
		pauses:  o.pauses,
		resumes: o.resumes,
		stops:   o.stops,
		closed:  o.closed,
	}
}

// backend hands out fake decoders and outputs and tracks live workers.
type backend struct {
	newDecoder func(path string) *fakeDecoder
	newOutput  func() *fakeOutput

	mu       sync.Mutex
	decoders []*fakeDecoder
	outputs  []*fakeOutput

	live atomic.Int32
}

func newBackend() *backend {
	return &backend{
		newDecoder: func(path string) *fakeDecoder {
			return &fakeDecoder{format: stereo44k, blockSize: 4608, blocks: -1, delay: time.Millisecond}
		},
		newOutput: func() *fakeOutput { return &fakeOutput{} },
	}
}

func (b *backend) openDecoder(path string) (Decoder, error) {
	d := b.newDecoder(path)
	d.path = path
	b.mu.Lock()
	b.decoders = append(b.decoders, d)
	b.mu.Unlock()
	b.live.Add(1)
	return &liveDecoder{fakeDecoder: d, live: &b.live}, nil
}

func (b *backend) output() Output {
	o := b.newOutput()
	b.mu.Lock()
	b.outputs = append(b.outputs, o)
	b.mu.Unlock()
	return o
}

func (b *backend) decoder(i int) *fakeDecoder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= len(b.decoders) {
		return nil
	}
	return b.decoders[i]
}

func (b *backend) lastOutput() *fakeOutput {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.outputs) == 0 {
		return nil
	}
	return b.outputs[len(b.outputs)-1]
}

func (b *backend) decoderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.decoders)
}

// liveDecoder decrements the live counter when closed.
type liveDecoder struct {
	*fakeDecoder
	live *atomic.Int32
	once sync.Once
}

func (d *liveDecoder) Close() error {
	d.once.Do(func() { d.live.Add(-1) })
	return d.fakeDecoder.Close()
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
