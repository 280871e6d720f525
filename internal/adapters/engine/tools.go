package engine

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/zerr"
)

// filePlaceholder is replaced with the scratch file path in tool commands.
const filePlaceholder = "{file}"

// runner optimizes the file at path in place.
type runner func(ctx context.Context, path string) error

// builtins are the in-process optimizers selectable with `builtin:`.
var builtins = map[string]runner{
	"png": recompressPNG,
}

// commandRunner runs an external binary with the given argv template.
func commandRunner(argv []string, timeout time.Duration) runner {
	return func(ctx context.Context, path string) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		args := expandArgs(argv[1:], path)
		cmd := exec.CommandContext(ctx, argv[0], args...) //nolint:gosec // user configured tool

		cmd.WaitDelay = time.Second

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			var exitCode int
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
			} else {
				exitCode = -1
			}

			err = zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				err = zerr.With(err, "stderr", msg)
			}
			if ctx.Err() != nil {
				err = zerr.With(err, "timeout", timeout.String())
			}
			return err
		}

		return nil
	}
}

// expandArgs substitutes the placeholder, appending path when it is absent.
func expandArgs(args []string, path string) []string {
	out := make([]string, 0, len(args)+1)
	substituted := false
	for _, arg := range args {
		if strings.Contains(arg, filePlaceholder) {
			arg = strings.ReplaceAll(arg, filePlaceholder, path)
			substituted = true
		}
		out = append(out, arg)
	}
	if !substituted {
		out = append(out, path)
	}
	return out
}

// recompressPNG re-encodes a PNG losslessly at maximum compression.
func recompressPNG(_ context.Context, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Scratch file created by the engine
	if err != nil {
		return zerr.Wrap(err, "failed to read png")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return zerr.Wrap(err, "failed to decode png")
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return zerr.Wrap(err, "failed to encode png")
	}

	if buf.Len() >= len(data) {
		return nil
	}

	if err := os.WriteFile(path, buf.Bytes(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write png")
	}
	return nil
}
