package audio

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"

	"space-rocks/internal/config"
	"space-rocks/internal/game"
)

// maxVoices caps how many cues may overlap in the mixer.
const maxVoices = 8

// Player plays cues through the speaker. A disabled or uninitialized
// Player accepts every call and does nothing.
type Player struct {
	mu          sync.Mutex
	cfg         config.AudioConfig
	sr          beep.SampleRate
	mixer       *beep.Mixer
	thrust      *beep.Ctrl
	music       beep.StreamSeekCloser
	initialized bool
}

// NewPlayer creates a player. Call Init before playing.
func NewPlayer(cfg config.AudioConfig) *Player {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	return &Player{
		cfg:   cfg,
		sr:    beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
	}
}

// Init opens the speaker and starts the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || !p.cfg.Enabled {
		return nil
	}
	if err := speaker.Init(p.sr, p.sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	p.thrust = &beep.Ctrl{Streamer: newVolume(rumble(), p.cfg.Volume*0.5), Paused: true}
	p.mixer.Add(p.thrust)
	speaker.Play(p.mixer)
	p.initialized = true

	if p.cfg.MusicPath != "" {
		if err := p.startMusic(p.cfg.MusicPath); err != nil {
			log.Printf("⚠️ Background music disabled: %v", err)
		}
	}
	log.Printf("🔊 Audio ready at %d Hz", p.cfg.SampleRate)
	return nil
}

// startMusic loops an OGG Vorbis file under the cues. Caller holds p.mu.
func (p *Player) startMusic(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open music: %w", err)
	}
	streamer, format, err := vorbis.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode music: %w", err)
	}
	p.music = streamer

	var s beep.Streamer = beep.Loop(-1, streamer)
	if format.SampleRate != p.sr {
		s = beep.Resample(4, format.SampleRate, p.sr, s)
	}
	speaker.Lock()
	p.mixer.Add(newVolume(s, p.cfg.Volume*0.4))
	speaker.Unlock()
	log.Printf("🎵 Background music loaded: %s", path)
	return nil
}

// Play mixes in a cue. Excess cues are dropped once maxVoices are busy.
func (p *Player) Play(cue Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()
	if p.mixer.Len() >= maxVoices+p.backgroundVoices() {
		return
	}
	p.mixer.Add(Synth(cue, p.sr, p.cfg.Volume))
}

func (p *Player) backgroundVoices() int {
	n := 1 // thrust
	if p.music != nil {
		n++
	}
	return n
}

// OnEvent plays the cue for ev, if any. Use it as an engine event callback.
func (p *Player) OnEvent(ev game.Event) {
	if cue, ok := CueForEvent(ev); ok {
		p.Play(cue)
	}
}

// SetThrust starts or stops the thrust rumble.
func (p *Player) SetThrust(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.thrust.Paused = !on
	speaker.Unlock()
}

// Close silences everything and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}

	speaker.Clear()
	speaker.Close()
	if p.music != nil {
		p.music.Close()
		p.music = nil
	}
	p.initialized = false
}
