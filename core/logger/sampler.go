package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler lets numerator out of every denominator events through.
// A zero ratio disables sampling entirely.
type ratioSampler struct {
	mu       sync.Mutex
	num, den int
	counter  int
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

func (s *ratioSampler) Set(num, den int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter = 0
	if num <= 0 || den <= 0 {
		s.num, s.den = 0, 0
		return
	}
	s.num, s.den = min(num, den), den
}

func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.den <= 0 {
		return true
	}
	s.counter = s.counter%s.den + 1
	return s.counter <= s.num
}

// parseRatioSpec accepts "n/d" or a bare "d" meaning 1/d.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
