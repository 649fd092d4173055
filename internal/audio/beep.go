package audio

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// BeepFrequency is the pitch of the fallback tone.
	BeepFrequency = 880.0
	// BeepDuration is how long each beep sounds.
	BeepDuration = 150 * time.Millisecond
	// BeepPeriod is the distance between beep starts.
	BeepPeriod = 800 * time.Millisecond
	// BeepVolume is the gain of the fallback tone.
	BeepVolume = 0.3
	// SoundVolume is the gain of catalog sounds.
	SoundVolume = 0.5
)

// beepPattern renders one BeepPeriod of PCM: a sine burst followed by silence.
func beepPattern(format Format) []byte {
	frames := int(int64(format.SampleRate) * int64(BeepPeriod) / int64(time.Second))
	toneFrames := int(int64(format.SampleRate) * int64(BeepDuration) / int64(time.Second))
	frameSize := format.bytesPerFrame()

	pcm := make([]byte, frames*frameSize)

	for i := range toneFrames {
		phase := 2 * math.Pi * BeepFrequency * float64(i) / float64(format.SampleRate)
		sample := uint16(int16(math.Sin(phase) * math.MaxInt16))

		for ch := range format.Channels {
			binary.LittleEndian.PutUint16(pcm[i*frameSize+ch*2:], sample)
		}
	}

	return pcm
}
