package engine

import (
	"fmt"
	"os/exec"

	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EngineFactory = (*Factory)(nil)

// Factory builds engines from engine options.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory that reports missing tools to logger.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// DefaultTools is the chain used when no tools are configured.
func DefaultTools() []domain.Tool {
	return []domain.Tool{
		{Name: "png", Builtin: "png", Extensions: []string{".png"}},
	}
}

// New validates opts and resolves every tool against this host.
func (f *Factory) New(opts domain.EngineOptions) (ports.Engine, error) {
	defs := opts.Tools
	if len(defs) == 0 {
		defs = DefaultTools()
	}

	tools := make([]tool, 0, len(defs))
	for _, def := range defs {
		t, err := f.resolve(def, opts)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}

	return &Engine{
		threads: threadCount(opts.Threads),
		tools:   tools,
	}, nil
}

func (f *Factory) resolve(def domain.Tool, opts domain.EngineOptions) (tool, error) {
	if def.Builtin != "" {
		run, ok := builtins[def.Builtin]
		if !ok {
			return tool{}, zerr.With(zerr.With(domain.ErrUnknownBuiltin, "builtin", def.Builtin), "tool", def.Name)
		}
		return tool{def: def, run: run, available: true}, nil
	}

	if len(def.Command) == 0 || def.Command[0] == "" {
		return tool{}, zerr.With(domain.ErrToolWithoutCommand, "tool", def.Name)
	}

	available := true
	if _, err := exec.LookPath(def.Command[0]); err != nil {
		available = false
		if f.logger != nil {
			f.logger.Warn(fmt.Sprintf("tool %s not found, %v files will not be optimized by it", def.Name, def.Extensions))
		}
	}

	return tool{def: def, run: commandRunner(def.Command, opts.Timeout), available: available}, nil
}
