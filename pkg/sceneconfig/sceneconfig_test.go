package sceneconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ajhager/lumentrace/pkg/shading"
	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "resolution: 512\nbounces: 4\n")
	params, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, shading.ShaderRaytrace, params.Shader)
	assert.Equal(t, 10.0, params.Clamp)
	assert.Equal(t, 512, params.Resolution)
}

func TestLoadRejectsUnknownShader(t *testing.T) {
	path := writeConfig(t, "resolution: 256\nshader: bogus\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveResolution(t *testing.T) {
	path := writeConfig(t, "resolution: 0\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	path := writeConfig(t, "resolution: 128\nshader: eyelight\nbounces: 2\nclamp: 5\nseed: 99\nnoparallel: true\n")
	params, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, shading.ShaderEyelight, params.Shader)
	assert.Equal(t, 5.0, params.Clamp)
	assert.Equal(t, uint64(99), params.Seed)
	assert.True(t, params.NoParallel)
}
