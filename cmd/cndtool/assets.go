package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/cnd"
)

func newFileReader(f *os.File, size int64) *bstream.Reader {
	return bstream.NewReader(f, size)
}

// writeAnimationBlob dumps a single animation as a self-contained Keyframes
// section of one entry, the form addAnimations reads back in.
func writeAnimationBlob(path string, a *cnd.Animation) error {
	w := bstream.NewWriter()
	if err := cnd.WriteSectionKeyframes(w, []*cnd.Animation{a}); err != nil {
		return err
	}
	return os.WriteFile(path, w.Bytes(), 0644)
}

func readAnimationBlob(path string) (*cnd.Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r := bstream.NewReader(bytes.NewReader(data), int64(len(data)))
	header := &cnd.Header{Keyframes: cnd.SectionCounts{Num: 1, Size: 1}}
	anims, err := cnd.ParseSectionKeyframes(r, header)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(anims) != 1 {
		return nil, fmt.Errorf("%s: expected exactly one animation, got %d", path, len(anims))
	}
	return anims[0], nil
}

// writeMaterialBlob dumps a single material as a self-contained Materials
// section of one entry, the form addMaterials reads back in.
func writeMaterialBlob(path string, m *cnd.Material) error {
	w := bstream.NewWriter()
	if err := cnd.WriteSectionMaterials(w, []*cnd.Material{m}); err != nil {
		return err
	}
	return os.WriteFile(path, w.Bytes(), 0644)
}

func readMaterialBlob(path string) (*cnd.Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r := bstream.NewReader(bytes.NewReader(data), int64(len(data)))
	header := &cnd.Header{Materials: cnd.SectionCounts{Num: 1, Size: 1}}
	materials, err := cnd.ParseSectionMaterials(r, header)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(materials) != 1 {
		return nil, fmt.Errorf("%s: expected exactly one material, got %d", path, len(materials))
	}
	return materials[0], nil
}

func addMaterials(cndPath string, files []string, replace bool) error {
	c, err := openContainer(cndPath)
	if err != nil {
		return fmt.Errorf("add material: %w", err)
	}

	for _, file := range files {
		m, err := readMaterialBlob(file)
		if err != nil {
			return fmt.Errorf("add material: %w", err)
		}
		idx := materialIndex(c.Materials, m.Name)
		switch {
		case idx >= 0 && replace:
			c.Materials[idx] = m
		case idx >= 0:
			return fmt.Errorf("add material: %q already exists (use --replace)", m.Name)
		default:
			c.Materials = append(c.Materials, m)
		}
	}

	return patchMaterials(cndPath, c)
}

func removeMaterials(cndPath string, names []string) error {
	c, err := openContainer(cndPath)
	if err != nil {
		return fmt.Errorf("remove material: %w", err)
	}

	for _, name := range names {
		idx := materialIndex(c.Materials, name)
		if idx < 0 {
			return fmt.Errorf("remove material: %q not found", name)
		}
		c.Materials = append(c.Materials[:idx], c.Materials[idx+1:]...)
	}

	return patchMaterials(cndPath, c)
}

func materialIndex(materials []*cnd.Material, name string) int {
	for i, m := range materials {
		if m.Name == name {
			return i
		}
	}
	return -1
}

func patchMaterials(cndPath string, c *cnd.Container) error {
	w := bstream.NewWriter()
	if err := cnd.WriteSectionMaterials(w, c.Materials); err != nil {
		return fmt.Errorf("encode materials section: %w", err)
	}
	newHeader := *c.Header
	newHeader.Materials.Num = uint32(len(c.Materials))
	if newHeader.Materials.Num > newHeader.Materials.Size {
		newHeader.Materials.Size = newHeader.Materials.Num
	}
	return cnd.PatchSection(cndPath, cnd.SectionMaterials, w.Bytes(), &newHeader)
}

func addAnimations(cndPath string, files []string, replace bool) error {
	c, err := openContainer(cndPath)
	if err != nil {
		return fmt.Errorf("add animation: %w", err)
	}

	for _, file := range files {
		a, err := readAnimationBlob(file)
		if err != nil {
			return fmt.Errorf("add animation: %w", err)
		}
		idx := animationIndex(c.Keyframes, a.Name)
		switch {
		case idx >= 0 && replace:
			c.Keyframes[idx] = a
		case idx >= 0:
			return fmt.Errorf("add animation: %q already exists (use --replace)", a.Name)
		default:
			c.Keyframes = append(c.Keyframes, a)
		}
	}

	return patchAnimations(cndPath, c)
}

func removeAnimations(cndPath string, names []string) error {
	c, err := openContainer(cndPath)
	if err != nil {
		return fmt.Errorf("remove animation: %w", err)
	}

	for _, name := range names {
		idx := animationIndex(c.Keyframes, name)
		if idx < 0 {
			return fmt.Errorf("remove animation: %q not found", name)
		}
		c.Keyframes = append(c.Keyframes[:idx], c.Keyframes[idx+1:]...)
	}

	return patchAnimations(cndPath, c)
}

func animationIndex(anims []*cnd.Animation, name string) int {
	for i, a := range anims {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func patchAnimations(cndPath string, c *cnd.Container) error {
	w := bstream.NewWriter()
	if err := cnd.WriteSectionKeyframes(w, c.Keyframes); err != nil {
		return fmt.Errorf("encode keyframes section: %w", err)
	}
	newHeader := *c.Header
	newHeader.Keyframes.Num = uint32(len(c.Keyframes))
	if newHeader.Keyframes.Num > newHeader.Keyframes.Size {
		newHeader.Keyframes.Size = newHeader.Keyframes.Num
	}
	return cnd.PatchSection(cndPath, cnd.SectionKeyframes, w.Bytes(), &newHeader)
}
