package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for login timing equalization.
type TimingConfig struct {
	BaseDelayMs   int
	RandomDelayMs int
}

// TimingDelay pads authentication failures to a minimum elapsed time so
// "unknown email" and "wrong password" are indistinguishable by latency.
type TimingDelay struct {
	config TimingConfig
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// cryptoRandIntn returns a secure random number in [0, max).
func cryptoRandIntn(max int) int {
	if max <= 0 {
		return 0
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return 0
	}

	return int(binary.BigEndian.Uint64(buf) % uint64(max))
}

// WaitFrom sleeps until at least base+random milliseconds have elapsed since
// start. No-op on success.
func (td *TimingDelay) WaitFrom(start time.Time, success bool) {
	if success {
		return
	}

	target := time.Duration(td.config.BaseDelayMs+cryptoRandIntn(td.config.RandomDelayMs)) * time.Millisecond

	if elapsed := time.Since(start); elapsed < target {
		time.Sleep(target - elapsed)
	}
}
