package assets

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// readTags returns the embedded title and artist of an audio file. Missing
// or unsupported tags yield empty strings.
func readTags(path string) (string, string) {
	file, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(metadata.Title()), strings.TrimSpace(metadata.Artist())
}

// Label is a human-readable name for an asset, preferring tag metadata.
func (a AssetRef) Label() string {
	switch {
	case a.Title != "" && a.Artist != "":
		return a.Title + " — " + a.Artist
	case a.Title != "":
		return a.Title
	default:
		return a.Name()
	}
}
