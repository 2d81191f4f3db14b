package audio

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const SAMPLE_RATE = beep.SampleRate(44100)

// burst is a decaying noise pop mixed with a low thump.
type burst struct {
	rate     beep.SampleRate
	duration int
	position int
	gain     float64
	rnd      *rand.Rand
}

// NewExplosion returns the sound of one explosion; more particles give a
// louder pop, capped at four.
func NewExplosion(rate beep.SampleRate, particles int, seed int64) beep.Streamer {
	if particles > 4 {
		particles = 4
	}
	return &burst{
		rate:     rate,
		duration: rate.N(180 * time.Millisecond),
		gain:     0.25 + 0.15*float64(particles),
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

func (b *burst) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.position >= b.duration {
			return i, i > 0
		}
		t := float64(b.position) / float64(b.rate)
		envelope := math.Exp(-t * 28)
		thump := math.Sin(2 * math.Pi * 70 * t)
		noise := b.rnd.Float64()*2 - 1
		val := b.gain * envelope * (0.6*noise + 0.4*thump)
		if val > 1 {
			val = 1
		} else if val < -1 {
			val = -1
		}
		samples[i][0] = val
		samples[i][1] = val
		b.position++
	}
	return len(samples), true
}

func (b *burst) Err() error { return nil }

type Player interface {
	Explode(particles int)
	Close()
}

type Silent struct{}

func (Silent) Explode(int) {}
func (Silent) Close()      {}

// Speaker plays explosions on the default audio device.
type Speaker struct {
	mu    sync.Mutex
	mixer *beep.Mixer
	seed  int64
}

func NewSpeaker() (*Speaker, error) {
	if err := speaker.Init(SAMPLE_RATE, SAMPLE_RATE.N(50*time.Millisecond)); err != nil {
		return nil, err
	}
	s := &Speaker{mixer: &beep.Mixer{}, seed: time.Now().UnixNano()}
	speaker.Play(s.mixer)
	return s, nil
}

func (s *Speaker) Explode(particles int) {
	s.mu.Lock()
	s.seed++
	seed := s.seed
	s.mu.Unlock()
	speaker.Lock()
	s.mixer.Add(NewExplosion(SAMPLE_RATE, particles, seed))
	speaker.Unlock()
}

func (s *Speaker) Close() {
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
}
