package docker

import (
	"archive/tar"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"pyconsole/internal/runtime/harness"
)

func TestTarWorkspace(t *testing.T) {
	t.Parallel()

	archive, err := tarWorkspace([]harness.File{
		{Name: "a.py", Data: []byte("print(1)")},
		{Name: "run.sh", Data: []byte("#!/bin/sh"), Mode: 0o755},
	}, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("tarWorkspace returned error: %v", err)
	}

	tr := tar.NewReader(archive)
	var names []string
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("read archive: %v", err)
		}
		names = append(names, header.Name)
		if header.Name == "a.py" && header.Mode != 0o644 {
			t.Fatalf("expected default mode for a.py, got %o", header.Mode)
		}
		if header.Name == "run.sh" && header.Mode != 0o755 {
			t.Fatalf("expected explicit mode for run.sh, got %o", header.Mode)
		}
	}
	if strings.Join(names, ",") != "a.py,run.sh" {
		t.Fatalf("unexpected archive entries %v", names)
	}
}

func TestCappedBufferTruncates(t *testing.T) {
	t.Parallel()

	buf := &cappedBuffer{limit: 5}
	for _, chunk := range []string{"abc", "defg", "hij"} {
		if n, err := buf.Write([]byte(chunk)); err != nil || n != len(chunk) {
			t.Fatalf("Write(%q) = %d, %v", chunk, n, err)
		}
	}
	if got := buf.String(); got != "abcde\n[output truncated]\n" {
		t.Fatalf("unexpected capped output %q", got)
	}

	small := &cappedBuffer{limit: 10}
	small.Write([]byte("ok"))
	if small.String() != "ok" {
		t.Fatalf("unexpected output %q", small.String())
	}
}
