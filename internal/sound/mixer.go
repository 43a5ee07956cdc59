package sound

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

const (
	DuckedVolume = 0.2
	FullVolume   = 1.0
)

// Mixer holds the background music volume. Ducking only applies while
// music is playing. lunafocus ships no music player of its own: nothing
// marks music as playing unless an embedding player calls SetPlaying, so
// in the stock binary Duck and Restore leave the volume untouched.
type Mixer struct {
	mu      sync.Mutex
	playing bool
	volume  float64
	log     zerolog.Logger
}

func NewMixer(log zerolog.Logger) *Mixer {
	return &Mixer{
		volume: FullVolume,
		log:    log.With().Str("component", "mixer").Logger(),
	}
}

// Duck lowers the music volume.
func (m *Mixer) Duck(context.Context) error {
	m.setVolume(DuckedVolume)
	return nil
}

// Restore returns the music to full volume.
func (m *Mixer) Restore(context.Context) error {
	m.setVolume(FullVolume)
	return nil
}

// SetPlaying records whether music is playing.
func (m *Mixer) SetPlaying(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = on
	if !on {
		m.volume = FullVolume
	}
}

func (m *Mixer) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mixer) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mixer) setVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing || m.volume == v {
		return
	}
	m.volume = v
	m.log.Debug().Float64("volume", v).Msg("music volume changed")
}
