package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"sakurareel/internal/media"
)

// LookPath resolves an executable name. Tests replace it.
var LookPath = exec.LookPath

// Detect returns the status of each required tool.
func Detect(ctx context.Context, runner media.Runner) []Status {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if runner == nil {
		runner = media.CmdRunner{}
	}

	var statuses []Status
	for _, name := range KnownTools() {
		def, _ := Definition(name)
		statuses = append(statuses, detectOne(ctx, runner, def))
	}
	return statuses
}

// Ensure returns the status of a required tool, or an error carrying install
// hints when it is missing or too old.
func Ensure(ctx context.Context, runner media.Runner, name string) (Status, error) {
	def, ok := Definition(name)
	if !ok {
		return Status{}, fmt.Errorf("unknown tool %q", name)
	}
	if runner == nil {
		runner = media.CmdRunner{}
	}
	status := detectOne(ctx, runner, def)
	if status.Satisfied {
		return status, nil
	}
	msg := fmt.Sprintf("%s unavailable: %s", name, status.Error)
	if len(status.Hints) > 0 {
		msg += "\n  " + strings.Join(status.Hints, "\n  ")
	}
	return status, errors.New(msg)
}

func detectOne(ctx context.Context, runner media.Runner, def ToolDefinition) Status {
	status := Status{Tool: def.Name, Minimum: def.MinimumVersion, Paths: map[string]string{}}

	systemPaths, err := locateSystem(def)
	if err != nil {
		status.Error = err.Error()
		status.Hints = installHints(def.Name)
		return status
	}
	status.Paths = systemPaths
	status.Path = systemPaths[def.Binaries[0].ID]

	version, err := readVersion(ctx, runner, def, systemPaths)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Version = version.String()
	status.Satisfied = version.AtLeast(ParseVersion(def.MinimumVersion))
	if !status.Satisfied {
		status.Error = fmt.Sprintf("version %s below minimum %s", status.Version, def.MinimumVersion)
		status.Hints = installHints(def.Name)
	}
	return status
}

func locateSystem(def ToolDefinition) (map[string]string, error) {
	paths := map[string]string{}
	for _, bin := range def.Binaries {
		path, err := LookPath(bin.Executable)
		if err != nil {
			return nil, fmt.Errorf("%s not found in PATH", bin.Executable)
		}
		paths[bin.ID] = path
	}
	return paths, nil
}
