package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteStub writes an executable /bin/sh script named name into dir and
// returns its path.
func WriteStub(t testing.TB, dir, name, body string) string {
	t.Helper()

	target := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// ProbeJSON returns ffprobe -show_streams style JSON for a clip with one
// video stream of the given size and, when audioChannels > 0, one audio stream.
func ProbeJSON(width, height, audioChannels int, duration string) string {
	streams := `{"index":0,"codec_type":"video","codec_name":"h264","width":` + strconv.Itoa(width) +
		`,"height":` + strconv.Itoa(height) + `,"r_frame_rate":"30/1"}`
	if audioChannels > 0 {
		streams += `,{"index":1,"codec_type":"audio","codec_name":"aac","sample_rate":"48000","channels":` +
			strconv.Itoa(audioChannels) + `,"disposition":{"default":1}}`
	}
	return `{"streams":[` + streams + `],"format":{"duration":"` + duration + `"}}`
}

// FFprobeScript returns a stub body that answers stream inspection with
// inspectJSON and the single-value duration query with duration.
func FFprobeScript(inspectJSON, duration string) string {
	return "case \"$*\" in\n" +
		"*-show_streams*)\ncat <<'JSON'\n" + inspectJSON + "\nJSON\n;;\n" +
		"*)\nprintf '%s\\n' '" + duration + "'\n;;\n" +
		"esac\n"
}
