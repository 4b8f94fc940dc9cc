// package chart extracts song metadata from osu! beatmap (.osu) files.
//
// Chart files are UTF-8 text with bracketed section headers ([General],
// [Metadata], ...) and Key:Value lines. Extraction is line-oriented and
// label-anchored: sections may appear in any order, and any field may be
// absent independently.
package chart

import (
	"fmt"
	"strings"

	"github.com/sobatea/chartsync/internal/shared"
)

// Extension is the file extension of osu! chart files.
const Extension = ".osu"

// Metadata is the flat record of song fields extracted from one chart file.
// All fields are optional; absent fields are empty strings.
type Metadata struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Version       string `json:"version"`
	Creator       string `json:"creator"`
	AudioFilename string `json:"audio_filename"`
}

// Extract parses chart file text into a Metadata record.
//
// Title, Artist, Version, and Creator come from the [Metadata] section;
// AudioFilename comes from the [General] section. A missing field yields an
// empty string. A missing [Metadata] section fails with [shared.ErrChartParse]
// since none of the song fields can be trusted without it.
func Extract(content string) (Metadata, error) {
	meta, ok := section(content, "Metadata")
	if !ok {
		return Metadata{}, fmt.Errorf("%w: no [Metadata] section", shared.ErrChartParse)
	}

	// The [General] section is optional; without it AudioFilename stays empty.
	general, _ := section(content, "General")

	return Metadata{
		Title:         field(meta, "Title"),
		Artist:        field(meta, "Artist"),
		Version:       field(meta, "Version"),
		Creator:       field(meta, "Creator"),
		AudioFilename: field(general, "AudioFilename"),
	}, nil
}

// section returns the lines between the named section header and the next
// section header (or end of text), and whether the header was found.
func section(content, name string) ([]string, bool) {
	header := "[" + name + "]"

	var lines []string
	found := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if found {
			if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
				break
			}
			lines = append(lines, line)
			continue
		}

		if trimmed == header {
			found = true
		}
	}

	return lines, found
}

// field returns the trimmed text following "label:" on the first matching
// line, or an empty string when no line carries the label.
func field(lines []string, label string) string {
	prefix := label + ":"

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}

	return ""
}
