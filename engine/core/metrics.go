package core

const AVG_COUNT uint8 = 30

// Metrics collects frame timings plus shader cache and composition counters.
// Owned by the frame thread, not safe for concurrent use.
type Metrics struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64

	ProgramCacheHits     uint64
	ProgramCacheMisses   uint64
	ProgramCompiles      uint64
	ProgramFailures      uint64
	CompositionRebuilds  uint64
	RenderActionsCreated uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		MStimes: [AVG_COUNT]float64{0},
	}
}

func (m *Metrics) Update(frameElapsedTime float64) {
	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	m.MStimes[m.FrameAVGCounter] = frameMS
	if m.FrameAVGCounter == AVG_COUNT-1 {
		m.MSavg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			m.MSavg += m.MStimes[i]
		}
		m.MSavg /= float64(AVG_COUNT)
	}
	m.FrameAVGCounter++
	m.FrameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	// Count all Frames.
	m.Frames++
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS, m.MSavg
}

// ProgramCacheHitRatio returns hits / (hits + misses), or 0 before any lookup.
func (m *Metrics) ProgramCacheHitRatio() float64 {
	total := m.ProgramCacheHits + m.ProgramCacheMisses
	if total == 0 {
		return 0
	}
	return float64(m.ProgramCacheHits) / float64(total)
}
