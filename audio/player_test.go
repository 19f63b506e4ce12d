package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/planner"
)

// attached returns a player wired to its mixer without opening a device
func attached(clock *time.Time) *Player {
	p := NewPlayer()
	p.initialized = true
	p.lock = func() {}
	p.unlock = func() {}
	p.now = func() time.Time { return *clock }
	return p
}

func drain(t *testing.T, s beep.Streamer) int {
	t.Helper()
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			for _, v := range buf[i] {
				if math.IsNaN(v) || math.Abs(v) > 1.0001 {
					t.Fatalf("sample %d out of range: %v", total+i, v)
				}
			}
		}
		total += n
		if !ok {
			return total
		}
		if total > parameter.AudioSampleRate*5 {
			t.Fatal("cue never ends")
		}
	}
}

func TestCueStreamersAreFiniteAndBounded(t *testing.T) {
	rate := beep.SampleRate(parameter.AudioSampleRate)
	for c := Cue(0); c < cueCount; c++ {
		s := c.Streamer(rate)
		if s == nil {
			t.Fatalf("cue %v has no streamer", c)
		}
		if n := drain(t, s); n == 0 {
			t.Errorf("cue %v produced no samples", c)
		}
	}
	if Cue(99).Streamer(rate) != nil {
		t.Error("unknown cue should have no streamer")
	}
}

func TestCueDurations(t *testing.T) {
	rate := beep.SampleRate(parameter.AudioSampleRate)

	got := drain(t, CueFail.Streamer(rate))
	if want := rate.N(parameter.FailCueDuration); got != want {
		t.Errorf("fail cue: got %d samples, want %d", got, want)
	}

	got = drain(t, CueArrive.Streamer(rate))
	if want := rate.N(parameter.ArriveCueNote1Duration) + rate.N(parameter.ArriveCueNote2Duration); got != want {
		t.Errorf("arrive cue: got %d samples, want %d", got, want)
	}
}

func TestEnvelopeRampsFromSilence(t *testing.T) {
	rate := beep.SampleRate(parameter.AudioSampleRate)
	s := NewEnvelope(NewOscillator(440, 50*time.Millisecond, WaveSquare, rate), 50*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate)

	buf := make([][2]float64, 4)
	n, ok := s.Stream(buf)
	if n != 4 || !ok {
		t.Fatalf("stream: n=%d ok=%v", n, ok)
	}
	if buf[0][0] != 0 {
		t.Errorf("first sample should be silent, got %v", buf[0][0])
	}
	if math.Abs(buf[3][0]) >= 0.01 {
		t.Errorf("attack should start near zero, got %v", buf[3][0])
	}
}

func TestPlayerSilentWithoutInit(t *testing.T) {
	p := NewPlayer()
	for c := Cue(0); c < cueCount; c++ {
		if p.Play(c) {
			t.Errorf("cue %v played without a device", c)
		}
	}
	p.Close()
	played, dropped := p.Stats()
	if played != 0 || dropped != 0 {
		t.Errorf("stats: played=%d dropped=%d", played, dropped)
	}
}

func TestPlayerThrottlesAndMutes(t *testing.T) {
	clock := time.Unix(0, 0)
	p := attached(&clock)

	if !p.Play(CueImprove) {
		t.Fatal("first cue should play")
	}
	if p.Play(CueImprove) {
		t.Error("cue inside the gap should be dropped")
	}

	clock = clock.Add(parameter.MinCueGap)
	if !p.Play(CueFinish) {
		t.Error("cue after the gap should play")
	}
	if got := p.mixer.Len(); got != 2 {
		t.Errorf("mixer holds %d streamers, want 2", got)
	}

	if p.ToggleMute() {
		t.Fatal("toggle should report muted")
	}
	clock = clock.Add(time.Second)
	if p.Play(CueFail) {
		t.Error("muted player should not play")
	}

	played, dropped := p.Stats()
	if played != 2 || dropped != 1 {
		t.Errorf("stats: played=%d dropped=%d, want 2/1", played, dropped)
	}
}

func TestPlayerSetVolumeClamps(t *testing.T) {
	p := NewPlayer()
	p.SetVolume(3)
	if p.volume != 1 {
		t.Errorf("volume %v, want 1", p.volume)
	}
	p.SetVolume(-1)
	if p.volume != 0 {
		t.Errorf("volume %v, want 0", p.volume)
	}
}

func TestObserverArrivesOnce(t *testing.T) {
	clock := time.Unix(0, 0)
	p := attached(&clock)
	observe := p.Observer()

	step := func(pr planner.Progress) {
		clock = clock.Add(time.Second)
		observe(pr)
	}

	step(planner.Progress{Generation: 1, Improved: true, BestDistance: 0.5})
	step(planner.Progress{Generation: 2, Improved: true, BestDistance: 0.2})
	step(planner.Progress{Generation: 3, Improved: true, BestDistance: 0})
	step(planner.Progress{Generation: 4, Improved: false, BestDistance: 0})
	step(planner.Progress{Generation: 5, Improved: true, BestDistance: 0})

	// gen 2 improve, gen 3 arrive, gen 5 improve
	if played, _ := p.Stats(); played != 3 {
		t.Errorf("played %d cues, want 3", played)
	}
}
