package whisper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultModel is used when a request names no model
const DefaultModel = "base"

const huggingFaceBase = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// Model is a downloadable ggml model
type Model struct {
	Name     string `json:"name"`
	FileName string `json:"file_name"`
	URL      string `json:"-"`
	SHA256   string `json:"-"`
	SizeMB   int    `json:"size_mb"`
}

var registry = map[string]Model{
	"tiny": {
		Name:     "tiny",
		FileName: "ggml-tiny.bin",
		SHA256:   "be07e048e1e599ad46341c8d2a135645097a538221678b7acdd1b1919c6e1b21",
		SizeMB:   75,
	},
	"base": {
		Name:     "base",
		FileName: "ggml-base.bin",
		SHA256:   "60ed5bc3dd14eea856493d334349b405782ddcaf0028d4b5df4088345fba2efe",
		SizeMB:   142,
	},
	"small": {
		Name:     "small",
		FileName: "ggml-small.bin",
		SHA256:   "1be3a9b2063867b937e64e2ec7483364a79917e157fa98c5d94b5c1fffea987b",
		SizeMB:   466,
	},
	"medium": {
		Name:     "medium",
		FileName: "ggml-medium.bin",
		SHA256:   "6c14d5adee5f86394037b4e4e8b59f1673b6cee10e3cf0b11bbdbee79c156208",
		SizeMB:   1500,
	},
	"large-v3": {
		Name:     "large-v3",
		FileName: "ggml-large-v3.bin",
		SHA256:   "64d182b440b98d5203c4f9bd541544d84c605196c4f7b845dfa11fb23594d1e2",
		SizeMB:   2900,
	},
	// no published checksum is pinned for turbo
	"large-v3-turbo": {
		Name:     "large-v3-turbo",
		FileName: "ggml-large-v3-turbo.bin",
		SizeMB:   1500,
	},
}

func init() {
	for name, m := range registry {
		m.URL = huggingFaceBase + m.FileName
		registry[name] = m
	}
}

// ModelNames lists the registry in sorted order
func ModelNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupModel finds a model by name
func LookupModel(name string) (Model, bool) {
	model, ok := registry[strings.TrimSpace(name)]
	return model, ok
}

// IsKnownModel reports whether name is in the registry
func IsKnownModel(name string) bool {
	_, ok := LookupModel(name)
	return ok
}

// Available describes a registry model and whether its file is on disk
type Available struct {
	Model
	Downloaded bool `json:"downloaded"`
}

// ListAvailable returns every registry model with its on-disk state in modelDir
func ListAvailable(modelDir string) []Available {
	out := make([]Available, 0, len(registry))
	for _, name := range ModelNames() {
		m := registry[name]
		_, err := modelFileSize(filepath.Join(modelDir, m.FileName))
		out = append(out, Available{Model: m, Downloaded: err == nil})
	}
	return out
}

// IsDownloaded reports whether the file of a registry model is in modelDir
func IsDownloaded(modelDir, name string) bool {
	m, ok := LookupModel(name)
	if !ok {
		return false
	}
	_, err := modelFileSize(filepath.Join(modelDir, m.FileName))
	return err == nil
}

// modelFileSize returns the size of a usable model file. Empty files count
// as missing.
func modelFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return info.Size(), nil
}

// ErrUnknownModel is returned for names outside the registry
var ErrUnknownModel = errors.New("unknown model")

func unknownModel(name string) error {
	return fmt.Errorf("%w %q (known models: %s)", ErrUnknownModel, name, strings.Join(ModelNames(), ", "))
}
