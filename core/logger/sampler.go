package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets numerator out of every denominator events through.
// A zero ratio lets everything through.
type ratioSampler struct {
	ratio atomic.Uint64 // numerator<<32 | denominator
	seq   atomic.Uint64
}

func newRatioSampler(numerator, denominator int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set replaces the ratio and restarts the sequence.
func (s *ratioSampler) Set(numerator, denominator int) {
	if numerator <= 0 || denominator <= 0 {
		s.ratio.Store(0)
	} else {
		numerator = min(numerator, denominator)
		s.ratio.Store(uint64(uint32(numerator))<<32 | uint64(uint32(denominator)))
	}
	s.seq.Store(0)
}

// Allow reports whether the next event passes.
func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	if r == 0 {
		return true
	}
	num, den := r>>32, r&0xffffffff
	return (s.seq.Add(1)-1)%den < num
}

// parseRatioSpec accepts "n/d", a bare "d" meaning 1/d, and "all", "0" or
// "off" for no sampling. Unparsable input falls back to 1/50.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	switch spec {
	case "all", "off", "0":
		return 0, 0
	}
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil && n > 0 && d > 0 {
			return n, d
		}
		return 1, 50
	}
	if d, err := strconv.Atoi(spec); err == nil && d > 0 {
		return 1, d
	}
	return 1, 50
}
