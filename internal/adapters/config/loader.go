// Package config provides the configuration loader for imgopt.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration at path. A directory is searched for imgopt.yaml.
// A missing file yields the defaults rooted at the directory it would live in.
func (l *Loader) Load(path string) (*domain.Config, error) {
	configPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	var file File
	//nolint:gosec // path is provided by user
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only
	default:
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	return l.build(configPath, &file)
}

func resolvePath(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return filepath.Join(abs, domain.ConfigFileName), nil
	}
	return abs, nil
}

func (l *Loader) build(configPath string, file *File) (*domain.Config, error) {
	root := resolveRoot(configPath, file.Root)

	buildDir := file.BuildDir
	if buildDir == "" {
		buildDir = domain.DefaultBuildDir
	}

	cfg := &domain.Config{
		Root:     root,
		BuildDir: resolveUnder(root, buildDir),
		Status:   file.Status,
		Options: domain.OptimizationOptions{
			Manifest:        true,
			ImageExtensions: normalizeExtensions(file.ImageExtensions),
		},
	}

	if file.Sitemap != "" {
		cfg.Sitemap = resolveUnder(root, file.Sitemap)
	}
	if cfg.Status == "" {
		cfg.Status = "linear"
	}
	if file.Manifest != nil {
		cfg.Options.Manifest = *file.Manifest
	}
	if len(cfg.Options.ImageExtensions) == 0 {
		cfg.Options.ImageExtensions = domain.DefaultImageExtensions()
	}

	engine, err := l.buildEngine(file.Engine)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	cfg.Options.Engine = engine

	return cfg, nil
}

func (l *Loader) buildEngine(dto EngineDTO) (domain.EngineOptions, error) {
	opts := domain.EngineOptions{Threads: dto.Threads}

	if dto.Threads < 0 {
		l.warn(fmt.Sprintf("engine.threads %d is negative, using the number of CPUs", dto.Threads))
		opts.Threads = 0
	}

	if dto.Timeout != "" {
		timeout, err := time.ParseDuration(dto.Timeout)
		if err != nil || timeout < 0 {
			return opts, zerr.With(domain.ErrInvalidTimeout, "timeout", dto.Timeout)
		}
		opts.Timeout = timeout
	}

	for i, t := range dto.Tools {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("tool-%d", i+1)
		}
		if t.Builtin != "" && len(t.Cmd) > 0 {
			l.warn(fmt.Sprintf("tool %s defines both builtin and cmd, cmd is ignored", name))
		}
		opts.Tools = append(opts.Tools, domain.Tool{
			Name:       name,
			Builtin:    t.Builtin,
			Command:    t.Cmd,
			Extensions: normalizeExtensions(t.Extensions),
		})
	}

	return opts, nil
}

func (l *Loader) warn(msg string) {
	if l.Logger != nil {
		l.Logger.Warn(msg)
	}
}

// resolveRoot resolves the project root relative to the config file's directory.
func resolveRoot(configPath, root string) string {
	return resolveUnder(filepath.Dir(configPath), root)
}

func resolveUnder(base, path string) string {
	if path == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// normalizeExtensions adds the leading dot. Case is preserved because matching is case-sensitive.
func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return nil
	}
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
