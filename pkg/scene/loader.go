package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
)

// File is the on-disk scene description.
//
// Each object lists its trajectory either inline as keyframes or as an
// import directive pointing at a recorder JSON file. Example:
//
//	objects:
//	  - id: drone-1
//	    size: 4
//	    color: "#FF6B6B"
//	    chunk_duration: 1000
//	    keyframes:
//	      - {time: 0, x: 0, y: 0}
//	      - {time: 500, x: 10, y: 10}
//	  - id: drone-2
//	    size: 6
//	    color: "#4ECDC4"
//	    chunk_duration: 800
//	    import:
//	      file: recordings/drone-2.json
//	      time_path: samples.#.t
//	      x_path: samples.#.x
//	      y_path: samples.#.y
type File struct {
	Objects []ObjectSpec `yaml:"objects"`
}

// ObjectSpec describes one object in a scene file.
type ObjectSpec struct {
	ID            string         `yaml:"id"`
	Size          float64        `yaml:"size"`
	Color         string         `yaml:"color"`
	ChunkDuration float64        `yaml:"chunk_duration"`
	Keyframes     []KeyframeSpec `yaml:"keyframes"`
	Import        *ImportSpec    `yaml:"import"`
}

// KeyframeSpec is one inline sample.
type KeyframeSpec struct {
	Time float64 `yaml:"time"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

func toKeyframe(k KeyframeSpec) keyframe.Keyframe {
	return keyframe.Keyframe{Time: k.Time, X: k.X, Y: k.Y}
}

// Load reads a YAML scene file and resolves every object's trajectory into
// creation parameters. Import directives are resolved relative to the scene
// file's directory.
func Load(path string) ([]ObjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene file %s: %w", path, err)
	}
	if len(f.Objects) == 0 {
		return nil, fmt.Errorf("scene file %s declares no objects", path)
	}

	base := filepath.Dir(path)

	configs := make([]ObjectConfig, 0, len(f.Objects))
	for i, spec := range f.Objects {
		if len(spec.Keyframes) > 0 && spec.Import != nil {
			return nil, fmt.Errorf("object %d (%s): keyframes and import are mutually exclusive", i, spec.ID)
		}

		var frames []keyframe.Keyframe
		switch {
		case spec.Import != nil:
			frames, err = ImportKeyframes(filepath.Join(base, spec.Import.File), *spec.Import)
			if err != nil {
				return nil, fmt.Errorf("object %d (%s): %w", i, spec.ID, err)
			}
		default:
			frames = make([]keyframe.Keyframe, 0, len(spec.Keyframes))
			for _, k := range spec.Keyframes {
				frames = append(frames, toKeyframe(k))
			}
		}

		configs = append(configs, ObjectConfig{
			ID:            spec.ID,
			Size:          spec.Size,
			Color:         spec.Color,
			ChunkDuration: spec.ChunkDuration,
			Keyframes:     frames,
		})
	}

	return configs, nil
}
