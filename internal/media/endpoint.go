package media

import (
	"math"
	"time"
)

// EndpointConfig controls the trailing-silence endpoint detector used by
// live capture sessions.
type EndpointConfig struct {
	SpeechThresholdDB float64
	SilenceTimeout    time.Duration
	MinSpeechDuration time.Duration
	SampleRate        int
}

// DefaultEndpointConfig returns defaults tuned for close-mic rehearsal speech.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		SpeechThresholdDB: -35,
		SilenceTimeout:    1200 * time.Millisecond,
		MinSpeechDuration: 400 * time.Millisecond,
		SampleRate:        16000,
	}
}

// EndpointDetector splits a live audio stream into speech segments by
// energy, ending a segment after SilenceTimeout of quiet. Each completed
// segment becomes one incremental recognition round trip.
type EndpointDetector struct {
	cfg         EndpointConfig
	inSpeech    bool
	speechStart time.Time
	lastSpeech  time.Time
	buffer      []float32
}

// NewEndpointDetector creates a detector with the given config.
func NewEndpointDetector(cfg EndpointConfig) *EndpointDetector {
	return &EndpointDetector{cfg: cfg}
}

// Segment is a completed stretch of speech ready for recognition.
type Segment struct {
	Samples []float32
}

// Feed consumes an audio chunk. When trailing silence closes out a speech
// segment longer than MinSpeechDuration, it is returned with ok=true.
func (d *EndpointDetector) Feed(samples []float32) (Segment, bool) {
	now := time.Now()
	if energyDB(samples) >= d.cfg.SpeechThresholdDB {
		if !d.inSpeech {
			d.inSpeech = true
			d.speechStart = now
		}
		d.lastSpeech = now
		d.buffer = append(d.buffer, samples...)
		return Segment{}, false
	}

	if !d.inSpeech {
		return Segment{}, false
	}
	d.buffer = append(d.buffer, samples...)

	if now.Sub(d.lastSpeech) < d.cfg.SilenceTimeout {
		return Segment{}, false
	}

	d.inSpeech = false
	if now.Sub(d.speechStart) < d.cfg.MinSpeechDuration {
		d.buffer = d.buffer[:0]
		return Segment{}, false
	}

	seg := Segment{Samples: d.buffer}
	d.buffer = nil
	return seg, true
}

// Flush returns any buffered speech and resets the detector. Called when
// the speaker stops the session mid-segment.
func (d *EndpointDetector) Flush() (Segment, bool) {
	if len(d.buffer) == 0 {
		return Segment{}, false
	}
	seg := Segment{Samples: d.buffer}
	d.buffer = nil
	d.inSpeech = false
	return seg, true
}

func energyDB(samples []float32) float64 {
	if len(samples) == 0 {
		return -100
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms < 1e-10 {
		return -100
	}
	return 20 * math.Log10(rms)
}
