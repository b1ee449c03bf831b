package sceneio

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"

	"github.com/ajhager/lumentrace/pkg/core"
	"github.com/ajhager/lumentrace/pkg/material"
	"github.com/ajhager/lumentrace/pkg/scenegraph"
	"github.com/ajhager/lumentrace/pkg/shape"
	"github.com/ajhager/lumentrace/pkg/texture"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF imports a glTF 2.0 document's meshes, materials, and node
// hierarchy into scene, returning the handles of every object it created.
// Textures referenced by materials are decoded relative to the document's
// directory.
func LoadGLTF(scene *scenegraph.Scene, path string) ([]scenegraph.Handle, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sceneio: opening gltf %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	materialHandles := make([]scenegraph.Handle, len(doc.Materials))
	for i, gm := range doc.Materials {
		materialHandles[i] = scene.AddMaterial(convertMaterial(scene, doc, dir, gm))
	}

	shapeHandles := make([][]scenegraph.Handle, len(doc.Meshes))
	shapeMaterials := make([][]scenegraph.Handle, len(doc.Meshes))
	for mi, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			sh, err := convertPrimitive(doc, prim)
			if err != nil {
				return nil, &core.MalformedSceneError{Entity: "gltf mesh", Reason: err.Error()}
			}
			shapeHandles[mi] = append(shapeHandles[mi], scene.AddShape(sh))
			matHandle := scenegraph.Handle(0)
			if prim.Material != nil {
				matHandle = materialHandles[*prim.Material]
			}
			shapeMaterials[mi] = append(shapeMaterials[mi], matHandle)
		}
	}

	var objects []scenegraph.Handle
	var walk func(nodeIdx uint32, parent core.Frame)
	walk = func(nodeIdx uint32, parent core.Frame) {
		node := doc.Nodes[nodeIdx]
		local := nodeLocalFrame(node)
		world := composeFrame(parent, local)

		if node.Mesh != nil {
			for i, shHandle := range shapeHandles[*node.Mesh] {
				objects = append(objects, scene.AddObject(scenegraph.Object{
					Frame:    world,
					Shape:    shHandle,
					Material: shapeMaterials[*node.Mesh][i],
				}))
			}
		}
		for _, child := range node.Children {
			walk(child, world)
		}
	}

	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = int(*doc.Scene)
		}
		for _, root := range doc.Scenes[sceneIdx].Nodes {
			walk(root, core.Identity())
		}
	}

	return objects, nil
}

func nodeLocalFrame(node *gltf.Node) core.Frame {
	m := node.MatrixOrDefault()
	return core.Frame{
		X:      core.NewVec3(m[0], m[1], m[2]),
		Y:      core.NewVec3(m[4], m[5], m[6]),
		Z:      core.NewVec3(m[8], m[9], m[10]),
		Origin: core.NewVec3(m[12], m[13], m[14]),
	}
}

func composeFrame(parent, local core.Frame) core.Frame {
	return core.Frame{
		X:      parent.TransformDirection(local.X),
		Y:      parent.TransformDirection(local.Y),
		Z:      parent.TransformDirection(local.Z),
		Origin: parent.TransformPoint(local.Origin),
	}
}

func convertPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*shape.Shape, error) {
	positions, err := modeler.ReadPosition(doc, doc.Accessors[prim.Attributes[gltf.POSITION]], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	sh := &shape.Shape{Kind: shape.KindTriangles}
	sh.Positions = make([]core.Vec3, len(positions))
	for i, p := range positions {
		sh.Positions[i] = core.NewVec3(float64(p[0]), float64(p[1]), float64(p[2]))
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		sh.Normals = make([]core.Vec3, len(normals))
		for i, n := range normals {
			sh.Normals[i] = core.NewVec3(float64(n[0]), float64(n[1]), float64(n[2]))
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading texcoords: %w", err)
		}
		sh.Texcoords = make([]core.Vec2, len(uvs))
		for i, uv := range uvs {
			sh.Texcoords[i] = core.NewVec2(float64(uv[0]), float64(uv[1]))
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			sh.Triangles = append(sh.Triangles, [3]int{int(indices[i]), int(indices[i+1]), int(indices[i+2])})
		}
	} else {
		for i := 0; i+2 < len(sh.Positions); i += 3 {
			sh.Triangles = append(sh.Triangles, [3]int{i, i + 1, i + 2})
		}
	}

	return sh, nil
}

func convertMaterial(scene *scenegraph.Scene, doc *gltf.Document, dir string, gm *gltf.Material) *material.Material {
	m := material.NewMaterial()
	pbr := gm.PBRMetallicRoughness
	if pbr != nil {
		base := pbr.BaseColorFactorOrDefault()
		m.Color = core.NewVec3(float64(base[0]), float64(base[1]), float64(base[2]))
		m.Opacity = float64(base[3])
		m.Metallic = pbr.MetallicFactorOrDefault()
		m.SetRoughness(pbr.RoughnessFactorOrDefault())

		if pbr.BaseColorTexture != nil {
			if tex, err := loadGLTFTexture(scene, doc, dir, pbr.BaseColorTexture.Index); err == nil {
				m.ColorTex = tex
			}
		}
	}
	emissive := gm.EmissiveFactorOrDefault()
	m.Emission = core.NewVec3(float64(emissive[0]), float64(emissive[1]), float64(emissive[2]))
	return m
}

// loadGLTFTexture decodes a glTF texture by index, resolving either an
// external image URI (relative to dir) or an embedded buffer-view image,
// and registers it in the scene's texture table.
func loadGLTFTexture(scene *scenegraph.Scene, doc *gltf.Document, dir string, texIdx uint32) (*texture.Texture, error) {
	if int(texIdx) >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", texIdx)
	}
	gt := doc.Textures[texIdx]
	if gt.Source == nil {
		return nil, fmt.Errorf("texture %d has no image source", texIdx)
	}
	img := doc.Images[*gt.Source]

	if img.URI != "" {
		tex, err := LoadTexture(filepath.Join(dir, img.URI), 0)
		if err != nil {
			return nil, err
		}
		scene.AddTexture(tex)
		return tex, nil
	}

	if img.BufferView == nil {
		return nil, fmt.Errorf("image %d has neither a URI nor a buffer view", *gt.Source)
	}
	bv := doc.BufferViews[*img.BufferView]
	raw := doc.Buffers[bv.Buffer].Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding embedded image %d: %w", *gt.Source, err)
	}
	tex := textureFromImage(decoded, 0)
	scene.AddTexture(tex)
	return tex, nil
}
