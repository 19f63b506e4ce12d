// Package audio plays short solver event cues through the system speaker
// Without an output device every call degrades to a no-op
package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/planner"
)

// Player mixes cues into a single speaker stream
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	volume      float64
	initialized bool
	last        time.Time

	muted   atomic.Bool
	played  atomic.Uint64
	dropped atomic.Uint64

	// Speaker hooks, swapped in tests
	lock   func()
	unlock func()
	now    func() time.Time
}

// NewPlayer returns an uninitialized player; Play is a no-op until Init succeeds
func NewPlayer() *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		rate:   beep.SampleRate(parameter.AudioSampleRate),
		volume: parameter.AudioMasterVolume,
		lock:   speaker.Lock,
		unlock: speaker.Unlock,
		now:    time.Now,
	}
}

// Init opens the speaker; repeated calls are no-ops
// A returned error leaves the player silent and safe to use
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(parameter.AudioBufferDuration)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Play queues a cue; false when silent, muted, throttled or unknown
func (p *Player) Play(c Cue) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.muted.Load() {
		return false
	}

	now := p.now()
	if !p.last.IsZero() && now.Sub(p.last) < parameter.MinCueGap {
		p.dropped.Add(1)
		return false
	}

	s := c.Streamer(p.rate)
	if s == nil {
		return false
	}

	p.lock()
	p.mixer.Add(newVolume(s, p.volume))
	p.unlock()

	p.last = now
	p.played.Add(1)
	return true
}

// SetVolume sets the master gain, clamped to [0, 1]
func (p *Player) SetVolume(vol float64) {
	p.mu.Lock()
	p.volume = min(max(vol, 0), 1)
	p.mu.Unlock()
}

// ToggleMute flips mute and reports whether sound is now on
func (p *Player) ToggleMute() bool {
	muted := !p.muted.Load()
	p.muted.Store(muted)
	return !muted
}

// Stats returns played and throttled cue counts
func (p *Player) Stats() (played, dropped uint64) {
	return p.played.Load(), p.dropped.Load()
}

// Close silences pending cues and releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	p.lock()
	p.mixer.Clear()
	p.unlock()
	speaker.Close()
	p.initialized = false
}

// Observer maps solver progress to cues
// Arrival plays once per run; improvements after the first generation play the improve cue
func (p *Player) Observer() planner.Observer {
	arrived := false
	return func(pr planner.Progress) {
		if pr.Generation == 1 {
			arrived = false
		}
		if !arrived && pr.BestDistance <= parameter.ArrivalDistance {
			arrived = true
			p.Play(CueArrive)
			return
		}
		if pr.Improved && pr.Generation > 1 {
			p.Play(CueImprove)
		}
	}
}
