package tools

import "runtime"

// FFmpeg names the only toolchain sakurareel drives. ffprobe ships in the
// same release, so a single version check covers both executables.
const FFmpeg = "ffmpeg"

// requirements is ordered; the first binary of each entry answers the
// version query.
var requirements = []ToolDefinition{
	{
		Name:           FFmpeg,
		MinimumVersion: "6.0",
		Binaries:       []BinarySpec{ffBinary("ffmpeg"), ffBinary("ffprobe")},
	},
}

func ffBinary(id string) BinarySpec {
	return BinarySpec{ID: id, Executable: executableName(id), VersionSwitch: "-version"}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// KnownTools lists the required tools in check order.
func KnownTools() []string {
	names := make([]string, len(requirements))
	for i, def := range requirements {
		names[i] = def.Name
	}
	return names
}

// Definition looks up a required tool by name.
func Definition(name string) (ToolDefinition, bool) {
	for _, def := range requirements {
		if def.Name == name {
			return def, true
		}
	}
	return ToolDefinition{}, false
}
