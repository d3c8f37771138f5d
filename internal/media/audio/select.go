package audio

import (
	"strconv"
	"strings"

	"highlighter/internal/media/ffprobe"
)

// Selection names the audio stream a Reader decodes.
type Selection struct {
	Primary      ffprobe.Stream
	PrimaryIndex int
	Candidates   int
}

// Silent reports whether the file has no usable audio stream.
func (s Selection) Silent() bool { return s.PrimaryIndex < 0 }

// PrimaryLabel returns a human-readable summary of the selected stream.
func (s Selection) PrimaryLabel() string {
	if s.Silent() {
		return "silence"
	}
	return formatStreamSummary(s.Primary)
}

// Select picks the primary audio stream: the default-flagged stream wins,
// then the one with the most channels, then the lowest index.
func Select(streams []ffprobe.Stream) Selection {
	candidates := buildCandidates(streams)
	if len(candidates) == 0 {
		return Selection{PrimaryIndex: -1}
	}
	best := candidates[0]
	for _, cand := range candidates[1:] {
		if better(cand, best) {
			best = cand
		}
	}
	return Selection{
		Primary:      best.stream,
		PrimaryIndex: best.stream.Index,
		Candidates:   len(candidates),
	}
}

type candidate struct {
	stream         ffprobe.Stream
	channels       int
	defaultFlagged bool
}

func better(a, b candidate) bool {
	if a.defaultFlagged != b.defaultFlagged {
		return a.defaultFlagged
	}
	if a.channels != b.channels {
		return a.channels > b.channels
	}
	return a.stream.Index < b.stream.Index
}

func buildCandidates(streams []ffprobe.Stream) []candidate {
	result := make([]candidate, 0, len(streams))
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		result = append(result, candidate{
			stream:         stream,
			channels:       channelCount(stream),
			defaultFlagged: stream.Disposition != nil && stream.Disposition["default"] == 1,
		})
	}
	return result
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	switch {
	case layout == "":
		return 0
	case layout == "mono":
		return 1
	case layout == "stereo":
		return 2
	case strings.HasPrefix(layout, "7.1"):
		return 8
	case strings.HasPrefix(layout, "5.1"):
		return 6
	case strings.HasPrefix(layout, "4.0"), layout == "quad":
		return 4
	}
	if strings.Contains(layout, ".") {
		total := 0
		for _, part := range strings.Split(layout, ".") {
			part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
			if n, err := strconv.Atoi(part); err == nil {
				total += n
			}
		}
		return total
	}
	return 0
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	parts = append(parts, "#"+strconv.Itoa(stream.Index))
	if codec := strings.TrimSpace(stream.CodecName); codec != "" {
		parts = append(parts, codec)
	}
	if ch := channelCount(stream); ch > 0 {
		parts = append(parts, strconv.Itoa(ch)+"ch")
	}
	if rate := strings.TrimSpace(stream.SampleRate); rate != "" {
		parts = append(parts, rate+"Hz")
	}
	if lang := strings.TrimSpace(stream.Tags["language"]); lang != "" {
		parts = append(parts, strings.ToLower(lang))
	}
	return strings.Join(parts, " | ")
}
