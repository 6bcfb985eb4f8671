package stream

import (
	"bytes"
	"sync"
)

// fakeADC hands out queued results. Once the queue is empty it reports no
// conversion and calls onEmpty, if set.
type fakeADC struct {
	mu      sync.Mutex
	values  []int16
	next    int
	onEmpty func()

	started     int
	convStarted int
	resultReads int
	polls       int
	neverReady  bool
	calls       *[]string
}

func (f *fakeADC) record(name string) {
	if f.calls != nil {
		*f.calls = append(*f.calls, name)
	}
}

func (f *fakeADC) Start() {
	f.started++
	f.record("adc.Start")
}

func (f *fakeADC) StartConvert() {
	f.convStarted++
	f.record("adc.StartConvert")
}

func (f *fakeADC) IsEndConversion(mode WaitMode) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.polls++
	if f.neverReady {
		return false
	}
	if f.next >= len(f.values) {
		if f.onEmpty != nil {
			f.onEmpty()
		}
		return false
	}
	return true
}

func (f *fakeADC) Result16() int16 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resultReads++
	v := f.values[f.next]
	f.next++
	return v
}

// fakeUSB records what is sent. ready[i] answers the i-th Ready call; when
// the slice runs out the port is ready.
type fakeUSB struct {
	out bytes.Buffer

	mode           PowerMode
	configuredAt   int // Configured returns true from this call on; -1 never
	configuredPoll int
	cdcInit        int
	ready          []bool
	readyCalls     int
	sends          int
	calls          *[]string
}

func (f *fakeUSB) record(name string) {
	if f.calls != nil {
		*f.calls = append(*f.calls, name)
	}
}

func (f *fakeUSB) Start(mode PowerMode) {
	f.mode = mode
	f.record("usb.Start")
}

func (f *fakeUSB) Configured() bool {
	f.configuredPoll++
	if f.configuredAt < 0 {
		return false
	}
	return f.configuredPoll > f.configuredAt
}

func (f *fakeUSB) InitCDC() {
	f.cdcInit++
	f.record("usb.InitCDC")
}

func (f *fakeUSB) Ready() bool {
	i := f.readyCalls
	f.readyCalls++
	if i < len(f.ready) {
		return f.ready[i]
	}
	return true
}

func (f *fakeUSB) Send(p []byte) {
	f.sends++
	f.out.Write(p)
}
