package services

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MinHumanFillTime is the fastest plausible human form completion.
const MinHumanFillTime = 1200 * time.Millisecond

const (
	reasonHoneypot = "honeypot"
	reasonFillTime = "fill_time"
)

func honeypotTripped(v string) bool {
	return strings.TrimSpace(v) != ""
}

// fillTimeMs returns the milliseconds between the client's startedAt (epoch
// millis or RFC 3339) and receipt, or -1 when the timer is missing.
func fillTimeMs(startedAt string, receivedAt time.Time) int64 {
	startedAt = strings.TrimSpace(startedAt)
	if startedAt == "" {
		return -1
	}

	var start time.Time
	if f, err := strconv.ParseFloat(startedAt, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return -1
		}
		start = time.UnixMilli(int64(f))
	} else if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		start = t
	} else {
		return -1
	}

	ms := receivedAt.Sub(start).Milliseconds()
	if ms < 0 {
		return -1
	}
	return ms
}

func tooFast(ms int64) bool {
	return ms >= 0 && ms < MinHumanFillTime.Milliseconds()
}
