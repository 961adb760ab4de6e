// Command cndtool extracts, lists, and patches the CND binary level
// container of a late-1990s 3D action-adventure engine. This file is the
// external-collaborator surface spec.md marks out of scope for the core
// codec: argument parsing and directory traversal live here, over the
// internal/cnd, internal/config and internal/indexcache packages.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ernie/cndtool/internal/cnd"
	"github.com/ernie/cndtool/internal/config"
	"github.com/ernie/cndtool/internal/indexcache"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:])
	case "remove":
		err = runRemove(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Println("FAILED")
		msg := err.Error()
		for _, a := range os.Args[2:] {
			if a == "--verbose" {
				msg = formatChain(err)
			}
		}
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
	fmt.Println("SUCCESS")
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cndtool <extract|list|add|remove> ...")
}

// formatChain prints an error and, for verbose runs, its full %w chain.
func formatChain(err error) string {
	var b strings.Builder
	b.WriteString(err.Error())
	for {
		unwrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		inner := unwrapped.Unwrap()
		if inner == nil {
			break
		}
		b.WriteString("\n  caused by: ")
		b.WriteString(inner.Error())
		err = inner
	}
	return b.String()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = "cndtool.yaml"
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

func openContainer(path string) (*cnd.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	r := newFileReader(f, stat.Size())
	return cnd.ParseContainer(r)
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	outputDir := fs.String("output-dir", "", "directory to write extracted assets into")
	noAnimations := fs.Bool("no-animations", false, "skip extracting animations")
	noMaterials := fs.Bool("no-materials", false, "skip extracting materials")
	noSounds := fs.Bool("no-sounds", false, "skip extracting sounds")
	_ = fs.Bool("bmp", false, "encode materials as BMP (reserved; raw payload always written)")
	maxTex := fs.Int("max-tex", 0, "skip materials wider or taller than N pixels (0 = no limit)")
	_ = fs.Bool("mipmap", false, "extract all mip levels (reserved; level 0 always written)")
	_ = fs.Bool("wav", false, "encode sounds as WAV (reserved; raw payload always written)")
	verbose := fs.Bool("verbose", false, "print the full error chain on failure")
	useCache := fs.Bool("cache", false, "use the asset index cache")
	configPath := fs.String("config", "", "path to cndtool.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("extract: missing <cnd> argument")
	}
	cndPath := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	merged := cfg.Merge(*outputDir, *maxTex, "")
	if merged.OutputDir == "" {
		merged.OutputDir = "."
	}

	c, err := openContainer(cndPath)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	if *useCache {
		if err := recordListingFingerprint(cndPath, *configPath, merged.CachePath); err != nil && *verbose {
			fmt.Fprintln(os.Stderr, "cache:", err)
		}
	}

	if err := os.MkdirAll(merged.OutputDir, 0755); err != nil {
		return fmt.Errorf("extract: create output dir: %w", err)
	}

	nSounds, nMaterials, nAnimations := 0, 0, 0

	if !*noSounds {
		dir := filepath.Join(merged.OutputDir, "sounds")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("extract: sounds dir: %w", err)
		}
		for _, s := range c.Sounds {
			name, err := s.Name()
			if err != nil {
				return fmt.Errorf("extract: sound name: %w", err)
			}
			if name == "" {
				name = fmt.Sprintf("sound_%d", s.Handle)
			}
			payload, err := s.Payload()
			if err != nil {
				return fmt.Errorf("extract: sound %s payload: %w", name, err)
			}
			if err := os.WriteFile(filepath.Join(dir, name+".raw"), payload, 0644); err != nil {
				return fmt.Errorf("extract: write sound %s: %w", name, err)
			}
			nSounds++
		}
	}

	if !*noMaterials {
		dir := filepath.Join(merged.OutputDir, "materials")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("extract: materials dir: %w", err)
		}
		for _, m := range c.Materials {
			if merged.MaxTex > 0 && (int(m.Width) > merged.MaxTex || int(m.HeightVal) > merged.MaxTex) {
				continue
			}
			name := m.Name
			if name == "" {
				name = "material"
			}
			var payload []byte
			if len(m.Cells) > 0 && len(m.Cells[0].Levels) > 0 {
				payload = m.Cells[0].Levels[0].Pixels
			}
			if err := os.WriteFile(filepath.Join(dir, name+".raw"), payload, 0644); err != nil {
				return fmt.Errorf("extract: write material %s: %w", name, err)
			}
			nMaterials++
		}
	}

	if !*noAnimations {
		dir := filepath.Join(merged.OutputDir, "animations")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("extract: animations dir: %w", err)
		}
		for _, a := range c.Keyframes {
			name := a.Name
			if name == "" {
				name = "animation"
			}
			if err := writeAnimationBlob(filepath.Join(dir, name+".key"), a); err != nil {
				return fmt.Errorf("extract: write animation %s: %w", name, err)
			}
			nAnimations++
		}
	}

	fmt.Printf("extracted %d sounds, %d materials, %d animations\n", nSounds, nMaterials, nAnimations)
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	showAnimations := fs.Bool("animations", false, "list animation names")
	showMaterials := fs.Bool("materials", false, "list material names")
	showSounds := fs.Bool("sounds", false, "list sound names")
	useCache := fs.Bool("cache", false, "use the asset index cache")
	configPath := fs.String("config", "", "path to cndtool.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("list: missing <cnd> argument")
	}
	cndPath := fs.Arg(0)

	if *useCache {
		if cached, err := listFromCache(cndPath, *configPath); err == nil && cached != "" {
			fmt.Print(cached)
			return nil
		}
	}

	c, err := openContainer(cndPath)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	fmt.Printf("sounds: %d\n", len(c.Sounds))
	fmt.Printf("materials: %d\n", len(c.Materials))
	fmt.Printf("animations: %d\n", len(c.Keyframes))
	fmt.Printf("sectors: %d\n", len(c.Sectors))
	fmt.Printf("things: %d\n", len(c.Things))
	fmt.Printf("templates: %d\n", len(c.TemplateOrder))

	if *showSounds {
		for _, s := range c.Sounds {
			name, err := s.Name()
			if err != nil {
				return fmt.Errorf("list: sound name: %w", err)
			}
			fmt.Println(" sound:", name)
		}
	}
	if *showMaterials {
		for _, m := range c.Materials {
			fmt.Println(" material:", m.Name)
		}
	}
	if *showAnimations {
		for _, a := range c.Keyframes {
			fmt.Println(" animation:", a.Name)
		}
	}
	return nil
}

func listFromCache(cndPath, configPath string) (string, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return "", err
	}
	cachePath := cfg.CachePath
	if cachePath == "" {
		cachePath = "cndtool-cache.db"
	}
	cache, err := indexcache.Open(cachePath)
	if err != nil {
		return "", err
	}
	defer cache.Close()

	data, err := os.ReadFile(cndPath)
	if err != nil {
		return "", err
	}
	fp, err := indexcache.Fingerprint(data)
	if err != nil {
		return "", err
	}
	payload, ok, err := cache.Get(fp)
	if err != nil || !ok {
		return "", err
	}
	return string(payload), nil
}

func recordListingFingerprint(cndPath, configPath, cachePathOverride string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cachePath := cachePathOverride
	if cachePath == "" {
		cachePath = cfg.CachePath
	}
	if cachePath == "" {
		cachePath = "cndtool-cache.db"
	}
	cache, err := indexcache.Open(cachePath)
	if err != nil {
		return err
	}
	defer cache.Close()

	data, err := os.ReadFile(cndPath)
	if err != nil {
		return err
	}
	fp, err := indexcache.Fingerprint(data)
	if err != nil {
		return err
	}
	return cache.Put(fp, data, time.Now().Unix())
}

func runAdd(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("add: missing kind argument (animation|material)")
	}
	kind := args[0]
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	replace := fs.Bool("replace", false, "replace an existing entry with the same name")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("add: usage: add (animation|material) [--replace] <cnd> <files...>")
	}
	cndPath := fs.Arg(0)
	files := fs.Args()[1:]

	switch kind {
	case "material":
		return addMaterials(cndPath, files, *replace)
	case "animation":
		return addAnimations(cndPath, files, *replace)
	default:
		return fmt.Errorf("add: unknown kind %q", kind)
	}
}

func runRemove(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("remove: missing kind argument (animation|material)")
	}
	kind := args[0]
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("remove: usage: remove (animation|material) <cnd> <names...>")
	}
	cndPath := fs.Arg(0)
	names := fs.Args()[1:]

	switch kind {
	case "material":
		return removeMaterials(cndPath, names)
	case "animation":
		return removeAnimations(cndPath, names)
	default:
		return fmt.Errorf("remove: unknown kind %q", kind)
	}
}
