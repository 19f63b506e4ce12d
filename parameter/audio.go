package parameter

import "time"

// Audio Output
const (
	AudioSampleRate = 44100

	// AudioBufferDuration sets speaker latency
	AudioBufferDuration = 100 * time.Millisecond

	// AudioMasterVolume scales every cue (0.0-1.0)
	AudioMasterVolume = 0.5

	// MinCueGap drops cues arriving closer together than this
	MinCueGap = 150 * time.Millisecond

	// ArrivalDistance is the best-route goal distance (normalized) that counts as arrived
	ArrivalDistance = 0.01
)

// Improve Cue
const (
	ImproveCueDuration           = 250 * time.Millisecond
	ImproveCueAttack             = 5 * time.Millisecond
	ImproveCueFundamentalRelease = 220 * time.Millisecond
	ImproveCueOvertoneRelease    = 100 * time.Millisecond
)

// Arrive Cue
const (
	ArriveCueNote1Duration = 80 * time.Millisecond
	ArriveCueNote2Duration = 280 * time.Millisecond
	ArriveCueAttack        = 5 * time.Millisecond
	ArriveCueNote1Release  = 40 * time.Millisecond
	ArriveCueNote2Release  = 200 * time.Millisecond
)

// Finish Cue
const (
	FinishCueNoteDuration = 120 * time.Millisecond
	FinishCueAttack       = 5 * time.Millisecond
	FinishCueRelease      = 80 * time.Millisecond
)

// Failure Cue
const (
	FailCueDuration = 200 * time.Millisecond
	FailCueAttack   = 5 * time.Millisecond
	FailCueRelease  = 60 * time.Millisecond
)
