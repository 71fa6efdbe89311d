package scene

import (
	"fmt"
	"math"
	"math/rand"
)

// demo palette, one entry per spawned object modulo length.
var demoColors = []string{
	"#FF6B6B", "#4ECDC4", "#FFE66D", "#A8DADC", "#F4A261", "#9B5DE5",
}

// Demo generates creation parameters for n objects moving on randomized
// circular paths inside a world of the given extent. Each object gets its
// own chunk duration so chunk boundaries do not line up across the scene.
//
// It stands in for a scene file during development and demos.
func Demo(n int, worldW, worldH float64, rng *rand.Rand) []ObjectConfig {
	configs := make([]ObjectConfig, 0, n)
	for i := 0; i < n; i++ {
		cx := worldW * (0.25 + 0.5*rng.Float64())
		cy := worldH * (0.25 + 0.5*rng.Float64())
		radius := 50 + rng.Float64()*math.Min(worldW, worldH)*0.2
		period := 8000 + rng.Float64()*8000 // ms per revolution
		phase := rng.Float64() * 2 * math.Pi

		const step = 100.0 // ms between samples
		samples := int(period/step) + 1
		frames := make([]KeyframeSpec, 0, samples)
		for s := 0; s < samples; s++ {
			t := float64(s) * step
			a := phase + 2*math.Pi*t/period
			frames = append(frames, KeyframeSpec{
				Time: t,
				X:    cx + radius*math.Cos(a),
				Y:    cy + radius*math.Sin(a),
			})
		}

		cfg := ObjectConfig{
			ID:            fmt.Sprintf("demo-%d", i),
			Size:          3 + rng.Float64()*5,
			Color:         demoColors[i%len(demoColors)],
			ChunkDuration: 500 + rng.Float64()*1500,
		}
		for _, k := range frames {
			cfg.Keyframes = append(cfg.Keyframes, toKeyframe(k))
		}
		configs = append(configs, cfg)
	}
	return configs
}
