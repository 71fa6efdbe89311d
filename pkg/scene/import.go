package scene

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/karu-dev/chunkplay/pkg/keyframe"
)

// ImportSpec pulls a trajectory out of an arbitrary recorder JSON file using
// gjson path expressions. Use "#" for arrays, e.g. "samples.#.t" extracts
// every t from the samples array. The three paths must yield the same number
// of elements.
type ImportSpec struct {
	File     string `yaml:"file"`
	TimePath string `yaml:"time_path"`
	XPath    string `yaml:"x_path"`
	YPath    string `yaml:"y_path"`
}

// ImportKeyframes reads the JSON file at path and extracts its samples
// using the configured path expressions.
func ImportKeyframes(path string, spec ImportSpec) ([]keyframe.Keyframe, error) {
	if spec.TimePath == "" || spec.XPath == "" || spec.YPath == "" {
		return nil, fmt.Errorf("import requires time_path, x_path and y_path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("import file %s is not valid JSON", path)
	}

	times := gjson.GetBytes(data, spec.TimePath).Array()
	xs := gjson.GetBytes(data, spec.XPath).Array()
	ys := gjson.GetBytes(data, spec.YPath).Array()

	if len(times) == 0 {
		return nil, fmt.Errorf("path %q matched no samples in %s", spec.TimePath, path)
	}
	if len(xs) != len(times) || len(ys) != len(times) {
		return nil, fmt.Errorf("path element counts differ: %d times, %d xs, %d ys",
			len(times), len(xs), len(ys))
	}

	frames := make([]keyframe.Keyframe, 0, len(times))
	for i := range times {
		frames = append(frames, keyframe.Keyframe{
			Time: times[i].Float(),
			X:    xs[i].Float(),
			Y:    ys[i].Float(),
		})
	}

	return frames, nil
}
