// Package sceneconfig loads the render parameters the scheduler and
// shading kernel read from a YAML file.
package sceneconfig

import (
	"fmt"
	"os"

	"github.com/ajhager/lumentrace/pkg/scheduler"
	"github.com/ajhager/lumentrace/pkg/shading"
	"gopkg.in/yaml.v3"
)

// Document mirrors the on-disk YAML shape before it is resolved into
// scheduler.Params (which stores the parsed Shader enum, not its name).
type Document struct {
	Resolution int     `yaml:"resolution"`
	Shader     string  `yaml:"shader"`
	Bounces    int     `yaml:"bounces"`
	Clamp      float64 `yaml:"clamp"`
	Seed       uint64  `yaml:"seed"`
	NoParallel bool    `yaml:"noparallel"`
	NumWorkers int     `yaml:"numworkers"`
}

// Load reads and validates a render-params YAML document.
func Load(path string) (scheduler.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scheduler.Params{}, fmt.Errorf("sceneconfig: reading %q: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return scheduler.Params{}, fmt.Errorf("sceneconfig: parsing %q: %w", path, err)
	}

	shaderName := doc.Shader
	if shaderName == "" {
		shaderName = "raytrace"
	}
	shader, err := shading.ParseShader(shaderName)
	if err != nil {
		return scheduler.Params{}, err
	}

	clamp := doc.Clamp
	if clamp == 0 {
		clamp = 10
	}

	params := scheduler.Params{
		Resolution: doc.Resolution,
		Shader:     shader,
		Bounces:    doc.Bounces,
		Clamp:      clamp,
		Seed:       doc.Seed,
		NoParallel: doc.NoParallel,
		NumWorkers: doc.NumWorkers,
	}
	if err := params.Validate(); err != nil {
		return scheduler.Params{}, err
	}
	return params, nil
}
