package audio

import (
	"github.com/gopxl/beep"

	"github.com/lixenwraith/path-evolution/parameter"
)

// Cue is a short sound tied to a solver event
type Cue int

const (
	CueImprove Cue = iota // Best fitness beat every earlier generation
	CueArrive             // Best route first reached the goal
	CueFinish             // Run completed its generations
	CueFail               // Run ended with an error
	cueCount
)

func (c Cue) String() string {
	switch c {
	case CueImprove:
		return "improve"
	case CueArrive:
		return "arrive"
	case CueFinish:
		return "finish"
	case CueFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Streamer builds a fresh streamer for c at unit gain, nil for unknown cues
func (c Cue) Streamer(rate beep.SampleRate) beep.Streamer {
	switch c {
	case CueImprove:
		// A5 with a quieter octave
		fund := tone(880, WaveSine, parameter.ImproveCueDuration, parameter.ImproveCueAttack, parameter.ImproveCueFundamentalRelease, rate)
		over := tone(1760, WaveSine, parameter.ImproveCueDuration, parameter.ImproveCueAttack, parameter.ImproveCueOvertoneRelease, rate)
		return beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.3))

	case CueArrive:
		// B5 then E6
		return beep.Seq(
			tone(987.77, WaveSquare, parameter.ArriveCueNote1Duration, parameter.ArriveCueAttack, parameter.ArriveCueNote1Release, rate),
			tone(1318.51, WaveSquare, parameter.ArriveCueNote2Duration, parameter.ArriveCueAttack, parameter.ArriveCueNote2Release, rate),
		)

	case CueFinish:
		// Rising C major arpeggio
		notes := []float64{523.25, 659.25, 783.99}
		parts := make([]beep.Streamer, len(notes))
		for i, f := range notes {
			parts[i] = tone(f, WaveSine, parameter.FinishCueNoteDuration, parameter.FinishCueAttack, parameter.FinishCueRelease, rate)
		}
		return beep.Seq(parts...)

	case CueFail:
		return tone(100, WaveSaw, parameter.FailCueDuration, parameter.FailCueAttack, parameter.FailCueRelease, rate)
	}
	return nil
}
