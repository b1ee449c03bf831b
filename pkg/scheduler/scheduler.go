// Package scheduler drives the shading kernel over an image, accumulating
// progressive per-pixel samples across repeated calls, in parallel across
// image rows with a set of worker goroutines started for each pass and a
// cooperative cancellation token.
package scheduler

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/scenegraph"
	"github.com/ajhager/lumentrace/pkg/shading"
)

// Params configures a render: resolution, shading parameters, the sample
// clamp, the seed, and the parallelism mode.
type Params struct {
	Resolution int
	Shader     shading.Shader
	Bounces    int
	Clamp      float64
	Seed       uint64
	NoParallel bool
	NumWorkers int // 0 selects runtime.NumCPU()
}

// Validate rejects configurations that cannot produce an image: a
// non-positive resolution, a negative bounce count, or an unrecognized
// shader.
func (p Params) Validate() error {
	if p.Resolution <= 0 {
		return &core.InvalidConfigError{Field: "resolution", Reason: "must be positive"}
	}
	if p.Bounces < 0 {
		return &core.InvalidConfigError{Field: "bounces", Reason: "must be non-negative"}
	}
	if _, err := shading.Dispatch(p.Shader); err != nil {
		return err
	}
	return nil
}

// Pixel is one image cell's progressive accumulation state.
type Pixel struct {
	RNG         core.RNG
	Accumulated core.Vec3
	Alpha       float64
	Samples     int
}

// State is the full render buffer: per-pixel accumulation state plus the
// derived radiance and alpha estimates, all sized to the image. Render[j][i]
// is Pixels[j][i].Accumulated/Samples; Alpha[j][i] is Pixels[j][i].Alpha/Samples.
type State struct {
	Width, Height int
	Pixels        [][]Pixel
	Render        [][]core.Vec3
	Alpha         [][]float64
}

// InitState allocates the render state for a camera/params pair and seeds
// every pixel's RNG deterministically: a master stream (seeded from a fixed
// constant, independent of params.Seed) hands out successive 31-bit odd
// stream ids, and each pixel's RNG is NewRNG(params.Seed, stream). Two runs
// with the same seed and resolution reproduce byte-identical images. Stream
// ids are drawn without a uniqueness check, so two pixels can receive the
// same stream.
func InitState(scene *scenegraph.Scene, cam *scenegraph.Camera, params Params) *State {
	width, height := resolutionFor(cam, params.Resolution)

	state := &State{
		Width:  width,
		Height: height,
		Pixels: make([][]Pixel, height),
		Render: make([][]core.Vec3, height),
		Alpha:  make([][]float64, height),
	}

	nextStream := core.NewStreamSequence()
	for j := 0; j < height; j++ {
		state.Pixels[j] = make([]Pixel, width)
		state.Render[j] = make([]core.Vec3, width)
		state.Alpha[j] = make([]float64, width)
		for i := 0; i < width; i++ {
			state.Pixels[j][i].RNG = core.NewRNG(params.Seed, nextStream())
		}
	}
	return state
}

// resolutionFor scales params.Resolution so the longer film axis equals it,
// preserving the camera's film aspect ratio.
func resolutionFor(cam *scenegraph.Camera, resolution int) (int, int) {
	if cam.Film.X >= cam.Film.Y {
		height := int(float64(resolution) * cam.Film.Y / cam.Film.X)
		if height < 1 {
			height = 1
		}
		return resolution, height
	}
	width := int(float64(resolution) * cam.Film.X / cam.Film.Y)
	if width < 1 {
		width = 1
	}
	return width, resolution
}

// StopToken is an atomic cooperative-cancellation flag, polled at row
// granularity by TraceSamples workers.
type StopToken struct {
	flag atomic.Bool
}

func (s *StopToken) Stop()         { s.flag.Store(true) }
func (s *StopToken) Stopped() bool { return s.flag.Load() }

// RenderStats summarizes one TraceSamples pass.
type RenderStats struct {
	RowsCompleted int
	RowsTotal     int
	Stopped       bool
}

// TraceSamples performs exactly one additional sample per pixel: for every
// pixel it draws jitter before computing the camera ray (so RNG advance is
// deterministic per pixel per call), shades, clamps, and accumulates. Rows
// are dispatched to workers via a shared atomic counter; params.NoParallel
// runs the same body sequentially in row-major order. If stop is non-nil and
// observed set, workers return after finishing their current row; pixels
// already updated keep their updates.
func TraceSamples(state *State, scene *scenegraph.Scene, cam *scenegraph.Camera, params Params, stop *StopToken) (RenderStats, error) {
	if err := params.Validate(); err != nil {
		return RenderStats{}, err
	}
	if cam.Film.X <= 0 || cam.Film.Y <= 0 {
		return RenderStats{}, &core.InvalidConfigError{Field: "film", Reason: "camera film must have positive width and height"}
	}
	shadeFn, err := shading.Dispatch(params.Shader)
	if err != nil {
		return RenderStats{}, err
	}
	shadeParams := shading.Params{Shader: params.Shader, Bounces: params.Bounces, Clamp: params.Clamp}

	var rowCounter atomic.Int64
	var rowsCompleted atomic.Int64
	stopped := false

	traceRow := func(j int) {
		for i := 0; i < state.Width; i++ {
			p := &state.Pixels[j][i]
			ju, jv := p.RNG.Rand2f()
			uv := core.NewVec2((float64(i)+ju)/float64(state.Width), (float64(j)+jv)/float64(state.Height))
			ray := scenegraph.EvalCamera(cam, uv)

			color, alpha := shadeFn(scene, ray, 0, p.RNG, shadeParams)
			color = clampChromaticity(color, params.Clamp)

			p.Accumulated = p.Accumulated.Add(color)
			p.Alpha += alpha
			p.Samples++
			state.Render[j][i] = p.Accumulated.Multiply(1 / float64(p.Samples))
			state.Alpha[j][i] = p.Alpha / float64(p.Samples)
		}
	}

	dispatchRow := func() {
		for {
			if stop != nil && stop.Stopped() {
				stopped = true
				return
			}
			j := int(rowCounter.Add(1)) - 1
			if j >= state.Height {
				return
			}
			traceRow(j)
			rowsCompleted.Add(1)
		}
	}

	if params.NoParallel {
		for j := 0; j < state.Height; j++ {
			if stop != nil && stop.Stopped() {
				stopped = true
				break
			}
			traceRow(j)
			rowsCompleted.Add(1)
		}
	} else {
		numWorkers := params.NumWorkers
		if numWorkers <= 0 {
			numWorkers = runtime.NumCPU()
		}
		var wg sync.WaitGroup
		wg.Add(numWorkers)
		for w := 0; w < numWorkers; w++ {
			go func() {
				defer wg.Done()
				dispatchRow()
			}()
		}
		wg.Wait()
	}

	return RenderStats{
		RowsCompleted: int(rowsCompleted.Load()),
		RowsTotal:     state.Height,
		Stopped:       stopped,
	}, nil
}

// clampChromaticity rescales color so its max channel equals clamp whenever
// it would otherwise exceed it, preserving the color's chromaticity. A
// non-positive clamp disables clamping.
func clampChromaticity(color core.Vec3, clamp float64) core.Vec3 {
	if clamp <= 0 {
		return color
	}
	m := color.MaxComponent()
	if m <= clamp {
		return color
	}
	return color.Multiply(clamp / m)
}
