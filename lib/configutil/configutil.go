// Package configutil loads json5 config files with an optional
// machine-local override layer. A file named config.json5 can sit next
// to a config.local.json5 whose values win over the checked-in defaults.
package configutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localPath derives the override filename for a config path, inserting
// ".local" before the extension.
func localPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func readLayer(path string, out any) (found bool, err error) {
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json5.Unmarshal(buf, out)
}

// ReadConfig reads <path> and merges <path minus extension>.local.<ext>
// on top of it. Either layer may be absent on its own, but when neither
// exists the error satisfies os.IsNotExist.
func ReadConfig[T any](path string) (T, error) {
	var out T

	foundBase, err := readLayer(path, &out)
	if err != nil {
		return out, err
	}

	var local T
	foundLocal, err := readLayer(localPath(path), &local)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, local, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("applied local config overrides", "path", localPath(path))
	}

	if !foundBase && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for `name` in the working directory and then
// each parent up to the filesystem root, reading the first match with
// ReadConfig.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if !os.IsNotExist(err) {
			return config, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
