// Package audio synthesizes arcade sound cues and plays them through the
// system speaker.
package audio

import (
	"encoding/json"
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"space-rocks/internal/game"
)

// Cue identifies a sound effect.
type Cue uint8

const (
	CueFire Cue = iota
	CueSaucerFire
	CueBangLarge
	CueBangMedium
	CueBangSmall
	CueShipExplode
	CueSaucerAlarm
	CueExtraLife
	CueHyperspace
	cueCount
)

func (c Cue) String() string {
	switch c {
	case CueFire:
		return "fire"
	case CueSaucerFire:
		return "saucer_fire"
	case CueBangLarge:
		return "bang_large"
	case CueBangMedium:
		return "bang_medium"
	case CueBangSmall:
		return "bang_small"
	case CueShipExplode:
		return "ship_explode"
	case CueSaucerAlarm:
		return "saucer_alarm"
	case CueExtraLife:
		return "extra_life"
	case CueHyperspace:
		return "hyperspace"
	default:
		return "unknown"
	}
}

// CueForEvent maps a gameplay event to its sound, if it has one.
func CueForEvent(ev game.Event) (Cue, bool) {
	switch ev.Type {
	case game.EventTypeShipFired:
		return CueFire, true
	case game.EventTypeSaucerFired:
		return CueSaucerFire, true
	case game.EventTypeAsteroidDestroyed:
		var p game.AsteroidPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return CueBangMedium, true
		}
		switch p.Size {
		case game.AsteroidLarge.String():
			return CueBangLarge, true
		case game.AsteroidSmall.String():
			return CueBangSmall, true
		}
		return CueBangMedium, true
	case game.EventTypeSaucerDestroyed:
		return CueBangLarge, true
	case game.EventTypeShipDestroyed:
		return CueShipExplode, true
	case game.EventTypeSaucerSpawned:
		return CueSaucerAlarm, true
	case game.EventTypeExtraLife:
		return CueExtraLife, true
	case game.EventTypeHyperspace:
		return CueHyperspace, true
	}
	return 0, false
}

// Synth builds a finite streamer for cue at the given sample rate.
// Volume is linear, 0 silences.
func Synth(cue Cue, sr beep.SampleRate, volume float64) beep.Streamer {
	var s beep.Streamer
	switch cue {
	case CueFire:
		s = sweep(sr, 1400, 300, 120*time.Millisecond)
	case CueSaucerFire:
		s = sweep(sr, 900, 500, 100*time.Millisecond)
	case CueBangLarge:
		s = bang(sr, 600*time.Millisecond, 0.9)
	case CueBangMedium:
		s = bang(sr, 400*time.Millisecond, 0.7)
	case CueBangSmall:
		s = bang(sr, 250*time.Millisecond, 0.5)
	case CueShipExplode:
		s = beep.Mix(bang(sr, 900*time.Millisecond, 1), tone(sr, 55, 900*time.Millisecond, 0.4))
	case CueSaucerAlarm:
		s = beep.Seq(
			tone(sr, 880, 80*time.Millisecond, 0.3),
			tone(sr, 660, 80*time.Millisecond, 0.3),
			tone(sr, 880, 80*time.Millisecond, 0.3),
			tone(sr, 660, 80*time.Millisecond, 0.3),
		)
	case CueExtraLife:
		s = beep.Seq(
			tone(sr, 1318.51, 60*time.Millisecond, 0.3),
			silence(sr.N(20*time.Millisecond)),
			tone(sr, 1318.51, 60*time.Millisecond, 0.3),
			silence(sr.N(20*time.Millisecond)),
			tone(sr, 1318.51, 60*time.Millisecond, 0.3),
		)
	case CueHyperspace:
		s = sweep(sr, 200, 1600, 250*time.Millisecond)
	default:
		return silence(0)
	}
	return newVolume(s, volume)
}

// silence plays n samples of nothing.
func silence(n int) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if n <= 0 {
			return 0, false
		}
		m := min(n, len(samples))
		clear(samples[:m])
		n -= m
		return m, true
	})
}

// tone is a square wave note with a short fade out.
func tone(sr beep.SampleRate, freq float64, d time.Duration, gain float64) beep.Streamer {
	osc, err := generators.SquareTone(sr, freq)
	if err != nil {
		return silence(sr.N(d))
	}
	n := sr.N(d)
	return decay(beep.Take(n, osc), n, gain)
}

// sweep glides a sine from one frequency to another over d.
func sweep(sr beep.SampleRate, from, to float64, d time.Duration) beep.Streamer {
	n := sr.N(d)
	pos := 0
	phase := 0.0
	s := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			if pos >= n {
				return i, i > 0
			}
			t := float64(pos) / float64(n)
			freq := from + (to-from)*t
			v := math.Sin(2 * math.Pi * phase)
			samples[i][0], samples[i][1] = v, v
			phase += freq / float64(sr)
			phase -= math.Floor(phase)
			pos++
		}
		return len(samples), true
	})
	return decay(s, n, 0.4)
}

// bang is filtered white noise: each sample leans on the previous one,
// which darkens the hiss into a thud.
func bang(sr beep.SampleRate, d time.Duration, gain float64) beep.Streamer {
	n := sr.N(d)
	pos := 0
	prev := 0.0
	s := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			if pos >= n {
				return i, i > 0
			}
			prev = prev*0.85 + (rand.Float64()*2-1)*0.15
			v := prev * 3
			samples[i][0], samples[i][1] = v, v
			pos++
		}
		return len(samples), true
	})
	return decay(s, n, gain)
}

// decay scales s linearly from gain down to zero over n samples.
func decay(s beep.Streamer, n int, gain float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		m, ok := s.Stream(samples)
		for i := 0; i < m; i++ {
			g := gain
			if n > 0 {
				g *= 1 - float64(pos)/float64(n)
			}
			if g < 0 {
				g = 0
			}
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return m, ok
	})
}

// newVolume wraps s in a volume effect.
// math.Log2(0) is -Inf, so zero volume is handled as silence.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// rumble is the looping thrust noise, lower and softer than a bang.
func rumble() beep.Streamer {
	prev := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			prev = prev*0.95 + (rand.Float64()*2-1)*0.05
			v := prev * 2
			samples[i][0], samples[i][1] = v, v
		}
		return len(samples), true
	})
}
