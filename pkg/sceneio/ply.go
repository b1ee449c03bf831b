package sceneio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/shape"
)

// plyProperty is one vertex property declared in the header, in file order.
type plyProperty struct {
	name string
}

// LoadPLY reads an ASCII PLY triangle mesh (the common case for renderer
// test assets) into a triangle Shape. Binary PLY and generic per-vertex
// custom properties are not supported; a file declaring a binary format is
// reported as a malformed scene rather than silently misread.
func LoadPLY(path string) (*shape.Shape, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sceneio: opening ply %q: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var vertexCount, faceCount int
	var vertexProps []plyProperty
	inVertexElement := false

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "ply" {
		return nil, &core.MalformedSceneError{Entity: "ply", Reason: "missing ply magic header"}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, &core.MalformedSceneError{Entity: "ply", Reason: "only ascii format is supported"}
			}
		case "comment":
			continue
		case "element":
			if len(fields) < 3 {
				return nil, &core.MalformedSceneError{Entity: "ply", Reason: "malformed element line"}
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, &core.MalformedSceneError{Entity: "ply", Reason: "non-integer element count"}
			}
			switch fields[1] {
			case "vertex":
				vertexCount = count
				inVertexElement = true
			case "face":
				faceCount = count
				inVertexElement = false
			default:
				inVertexElement = false
			}
		case "property":
			if inVertexElement {
				vertexProps = append(vertexProps, plyProperty{name: fields[len(fields)-1]})
			}
		case "end_header":
			goto header_done
		}
	}
header_done:

	propIndex := func(name string) int {
		for i, p := range vertexProps {
			if p.name == name {
				return i
			}
		}
		return -1
	}
	xi, yi, zi := propIndex("x"), propIndex("y"), propIndex("z")
	if xi < 0 || yi < 0 || zi < 0 {
		return nil, &core.MalformedSceneError{Entity: "ply", Reason: "vertex element missing x/y/z"}
	}
	nxi, nyi, nzi := propIndex("nx"), propIndex("ny"), propIndex("nz")
	ui, vi := propIndex("u"), propIndex("v")
	if ui < 0 {
		ui, vi = propIndex("s"), propIndex("t")
	}

	sh := &shape.Shape{Kind: shape.KindTriangles}
	sh.Positions = make([]core.Vec3, 0, vertexCount)
	hasNormals := nxi >= 0 && nyi >= 0 && nzi >= 0
	hasUVs := ui >= 0 && vi >= 0
	if hasNormals {
		sh.Normals = make([]core.Vec3, 0, vertexCount)
	}
	if hasUVs {
		sh.Texcoords = make([]core.Vec2, 0, vertexCount)
	}

	for i := 0; i < vertexCount; i++ {
		if !scanner.Scan() {
			return nil, &core.MalformedSceneError{Entity: "ply", Reason: "truncated vertex data"}
		}
		values, err := parseFloats(scanner.Text())
		if err != nil {
			return nil, &core.MalformedSceneError{Entity: "ply", Reason: err.Error()}
		}
		sh.Positions = append(sh.Positions, core.NewVec3(values[xi], values[yi], values[zi]))
		if hasNormals {
			sh.Normals = append(sh.Normals, core.NewVec3(values[nxi], values[nyi], values[nzi]))
		}
		if hasUVs {
			sh.Texcoords = append(sh.Texcoords, core.NewVec2(values[ui], values[vi]))
		}
	}

	for i := 0; i < faceCount; i++ {
		if !scanner.Scan() {
			return nil, &core.MalformedSceneError{Entity: "ply", Reason: "truncated face data"}
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, &core.MalformedSceneError{Entity: "ply", Reason: "face line has too few indices"}
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || len(fields) < n+1 {
			return nil, &core.MalformedSceneError{Entity: "ply", Reason: "malformed face vertex count"}
		}
		idx := make([]int, n)
		for k := 0; k < n; k++ {
			v, err := strconv.Atoi(fields[k+1])
			if err != nil {
				return nil, &core.MalformedSceneError{Entity: "ply", Reason: "non-integer face index"}
			}
			idx[k] = v
		}
		// Fan-triangulate faces with more than 3 vertices.
		for k := 1; k+1 < n; k++ {
			sh.Triangles = append(sh.Triangles, [3]int{idx[0], idx[k], idx[k+1]})
		}
	}

	return sh, nil
}

func parseFloats(line string) ([]float64, error) {
	fields := strings.Fields(line)
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric vertex field %q", f)
		}
		values[i] = v
	}
	return values, nil
}
