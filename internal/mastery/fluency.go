package mastery

// SpeedScore maps a response time against a target latency to [0,1].
// Answers within half the target score 1; the score falls off linearly to
// 0.5 at the target and to 0 at twice the target. A zero target is neutral.
func SpeedScore(latencyMs, targetMs int64) float64 {
	if targetMs <= 0 {
		return 0.5
	}

	ratio := float64(latencyMs) / float64(targetMs)

	switch {
	case ratio <= 0.5:
		return 1.0
	case ratio <= 1.0:
		return 1.0 - (ratio - 0.5)
	default:
		return max(0.0, 0.5-0.5*(ratio-1.0))
	}
}

// AttemptQuality scores one answer on 0..100. Wrong answers score 0; right
// answers score 80 plus up to 20 for speed. Unknown latency is neutral.
func AttemptQuality(correct bool, latencyMs, targetMs int64) float64 {
	if !correct {
		return 0
	}
	speed := 0.5
	if latencyMs > 0 {
		speed = SpeedScore(latencyMs, targetMs)
	}
	return 100 * (0.8 + 0.2*clamp(speed, 0, 1))
}

// ema blends a new observation into a running score. The first observation
// is taken as is.
func ema(prev float64, attempts int, obs, alpha float64) float64 {
	if attempts == 0 {
		return obs
	}
	return clamp(prev+alpha*(obs-prev), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
