package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/shatter/internal/logging"
	"github.com/chazu/shatter/pkg/kernel"
	"github.com/chazu/shatter/pkg/kernel/sdfx"
	"github.com/chazu/shatter/pkg/tessellate"
	"github.com/dustin/go-humanize"
)

// bundleName is the file written by the json format.
const bundleName = "scene.json"

// writeJSON writes the whole result to dir/scene.json and returns its path
// and size.
func writeJSON(dir string, r EvalResult) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("encode result: %w", err)
	}
	path := filepath.Join(dir, bundleName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, err
	}
	return path, int64(len(data)), nil
}

// writeSTL writes one binary STL per shard, named after its mesh, and
// returns the paths and total size.
func writeSTL(dir string, r EvalResult, k *sdfx.SdfxKernel) ([]string, int64, error) {
	s := r.Scene()
	if s == nil {
		return nil, 0, errors.New("no scene to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, 0, err
	}

	var paths []string
	var total int64
	for _, inst := range s.Instances {
		solid, err := tessellate.Place(k, inst)
		if err != nil {
			return nil, 0, fmt.Errorf("shard %d: %w", inst.Shard.Placement.Index, err)
		}
		path := filepath.Join(dir, tessellate.MeshName(inst.Shard.Placement.Index)+".stl")
		if err := k.SaveSTL(solid, path); err != nil {
			return nil, 0, err
		}
		fi, err := os.Stat(path)
		if err != nil {
			return nil, 0, err
		}
		total += fi.Size()
		paths = append(paths, path)
	}
	return paths, total, nil
}

// write emits r in the configured format and logs what was written.
func write(dir, format string, r EvalResult, k kernel.Kernel) error {
	switch format {
	case "json":
		path, size, err := writeJSON(dir, r)
		if err != nil {
			return err
		}
		logging.LogInfo("wrote bundle", "path", path, "size", humanize.Bytes(uint64(size)),
			"meshes", len(r.Meshes), "warnings", len(r.Warnings))
	case "stl":
		sk, ok := k.(*sdfx.SdfxKernel)
		if !ok {
			return errors.New("stl output needs the sdfx kernel")
		}
		paths, size, err := writeSTL(dir, r, sk)
		if err != nil {
			return err
		}
		logging.LogInfo("wrote stl files", "dir", dir, "files", len(paths), "size", humanize.Bytes(uint64(size)))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
