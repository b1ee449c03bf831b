// Command lumentrace renders a glTF or PLY scene to a PNG using the
// progressive ray tracer core.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/material"
	"github.com/ajhager/lumentrace/pkg/scenegraph"
	"github.com/ajhager/lumentrace/pkg/sceneio"
	"github.com/ajhager/lumentrace/pkg/scheduler"
	"github.com/ajhager/lumentrace/pkg/shading"
)

var (
	app = kingpin.New("lumentrace", "Progressive CPU ray tracer")

	scenePath  = app.Arg("scene", "glTF (.gltf/.glb) or PLY (.ply) scene file").Required().String()
	outputPath = app.Flag("out", "output PNG path").Default("render.png").String()
	resolution = app.Flag("resolution", "longer image axis, in pixels").Default("512").Int()
	samples    = app.Flag("samples", "total samples per pixel").Default("16").Int()
	bounces    = app.Flag("bounces", "maximum recursion depth").Default("5").Int()
	clamp      = app.Flag("clamp", "max per-sample radiance channel, 0 disables").Default("10").Float64()
	seed       = app.Flag("seed", "RNG seed").Default("1").Uint64()
	shaderName = app.Flag("shader", "raytrace|eyelight|normal|texcoord|color").Default("raytrace").String()
	noParallel = app.Flag("noparallel", "disable row-parallel dispatch").Bool()
	quiet      = app.Flag("quiet", "suppress progress output").Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := core.NewDefaultLogger()
	if *quiet {
		logger = core.NopLogger{}
	}

	if err := run(logger); err != nil {
		fmt.Fprintln(os.Stderr, "lumentrace:", err)
		os.Exit(1)
	}
}

func run(logger core.Logger) error {
	shader, err := shading.ParseShader(*shaderName)
	if err != nil {
		return err
	}

	scene := scenegraph.NewScene()
	cam := scenegraph.Camera{Frame: core.Identity(), Aperture: 0, Focus: 1}
	camHandle := scene.AddCamera(cam)

	logger.Printf("loading scene %s\n", *scenePath)
	if err := loadScene(scene, *scenePath); err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}
	scene.SetLens(camHandle, 1.0, 1.0, 1.0)

	logger.Printf("building acceleration structures\n")
	if err := scene.Build(); err != nil {
		return fmt.Errorf("building scene: %w", err)
	}

	params := scheduler.Params{
		Resolution: *resolution,
		Shader:     shader,
		Bounces:    *bounces,
		Clamp:      *clamp,
		Seed:       *seed,
		NoParallel: *noParallel,
	}
	if err := params.Validate(); err != nil {
		return err
	}

	camPtr := &scene.Cameras[camHandle]
	state := scheduler.InitState(scene, camPtr, params)

	start := time.Now()
	for pass := 1; pass <= *samples; pass++ {
		stats, err := scheduler.TraceSamples(state, scene, camPtr, params, nil)
		if err != nil {
			return fmt.Errorf("rendering pass %d: %w", pass, err)
		}
		logger.Printf("pass %d/%d: %d/%d rows\n", pass, *samples, stats.RowsCompleted, stats.RowsTotal)
	}
	logger.Printf("rendered %d samples in %s\n", *samples, time.Since(start))

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil && filepath.Dir(*outputPath) != "." {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := sceneio.WritePNG(*outputPath, state.Render, state.Alpha); err != nil {
		return fmt.Errorf("writing %s: %w", *outputPath, err)
	}
	logger.Printf("wrote %s\n", *outputPath)
	return nil
}

func loadScene(scene *scenegraph.Scene, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		_, err := sceneio.LoadGLTF(scene, path)
		return err
	case ".ply":
		sh, err := sceneio.LoadPLY(path)
		if err != nil {
			return err
		}
		shHandle := scene.AddShape(sh)
		matHandle := scene.AddMaterial(defaultMaterial())
		scene.AddObject(scenegraph.Object{Frame: core.Identity(), Shape: shHandle, Material: matHandle})
		return nil
	default:
		return &core.InvalidConfigError{Field: "scene", Reason: fmt.Sprintf("unsupported scene file extension %q", ext)}
	}
}

// defaultMaterial gives PLY meshes (which carry no material block of their
// own) a plain diffuse appearance.
func defaultMaterial() *material.Material {
	return material.NewMaterial()
}
