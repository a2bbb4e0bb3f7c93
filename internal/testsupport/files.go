package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mpkg/internal/manifest"
)

// signatures start fixture files so content sniffing sees the format the
// extension names.
var signatures = map[string][]byte{
	".mp4":  []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"),
	".webm": []byte("\x1a\x45\xdf\xa3"),
	".png":  []byte("\x89PNG\r\n\x1a\n"),
	".pdf":  []byte("%PDF-1.4\n"),
	".xml":  []byte("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"),
}

// WriteFile writes size bytes at path. The content opens with the signature
// for the file extension, when known, and is padded with filler. A size
// smaller than the signature writes the signature alone.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	sig := signatures[strings.ToLower(filepath.Ext(path))]
	if size < int64(len(sig)) {
		size = int64(len(sig))
	}
	if size <= 0 {
		size = 1
	}
	content := append(bytes.Clone(sig), bytes.Repeat([]byte{0x42}, int(size)-len(sig))...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type fileFacts interface {
	SetSize(int64)
	SetChecksum(manifest.Checksum)
}

// WriteElementFile writes fixture content at the locator of el and records
// the resulting size and sha256 checksum on it.
func WriteElementFile(t testing.TB, el manifest.Element, size int64) {
	t.Helper()

	WriteFile(t, el.URI(), size)
	f, err := os.Open(el.URI())
	if err != nil {
		t.Fatalf("open %s: %v", el.URI(), err)
	}
	defer f.Close()
	sum, err := manifest.ComputeChecksum(manifest.ChecksumSHA256, f)
	if err != nil {
		t.Fatalf("checksum %s: %v", el.URI(), err)
	}
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("stat %s: %v", el.URI(), err)
	}

	facts, ok := el.(fileFacts)
	if !ok {
		t.Fatalf("%s does not record file facts", el.Kind())
	}
	facts.SetSize(info.Size())
	facts.SetChecksum(sum)
}
