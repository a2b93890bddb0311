package tools

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sakurareel/internal/media"
)

// Version is a dotted release number. Missing components compare as zero.
type Version []int

var versionDigits = regexp.MustCompile(`\d+(?:\.\d+)*`)

// ParseVersion pulls the release number out of a "-version" banner such as
// "ffmpeg version 6.1.1-3ubuntu5 Copyright ...". Release tags like "n7.0"
// lose their prefix; git snapshots ("N-112345-g...") keep the leading number.
func ParseVersion(banner string) Version {
	line, _, _ := strings.Cut(strings.TrimSpace(banner), "\n")
	token := line
	if fields := strings.Fields(line); len(fields) >= 3 && fields[1] == "version" {
		token = fields[2]
	}
	match := versionDigits.FindString(token)
	if match == "" {
		return nil
	}
	var v Version
	for _, part := range strings.Split(match, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		v = append(v, n)
	}
	return v
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// AtLeast reports whether v is the same as or newer than min. An empty
// minimum accepts anything; an empty version satisfies nothing else.
func (v Version) AtLeast(min Version) bool {
	if len(min) == 0 {
		return true
	}
	if len(v) == 0 {
		return false
	}
	for i := 0; i < len(v) || i < len(min); i++ {
		a, b := component(v, i), component(min, i)
		if a != b {
			return a > b
		}
	}
	return true
}

func component(v Version, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

func readVersion(ctx context.Context, runner media.Runner, def ToolDefinition, located map[string]string) (Version, error) {
	if len(def.Binaries) == 0 {
		return nil, fmt.Errorf("tool %s has no binaries", def.Name)
	}
	probe := def.Binaries[0]
	path, ok := located[probe.ID]
	if !ok {
		return nil, fmt.Errorf("%s was not located", probe.ID)
	}

	result, err := runner.Run(ctx, path, []string{probe.VersionSwitch}, media.RunOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", probe.ID, probe.VersionSwitch, err)
	}
	version := ParseVersion(string(result.Stdout))
	if len(version) == 0 {
		return nil, fmt.Errorf("%s printed no recognizable version", probe.ID)
	}
	return version, nil
}
