package producer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"pyconsole/internal/domain/execution"
)

func writeScript(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestNextScriptLoadsFilesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	service := NewService(
		writeScript(t, dir, "hello.py", "print('hello')\n"),
		writeScript(t, dir, "time.py", "import time\n"),
	)

	first, err := service.NextScript(context.Background())
	if err != nil {
		t.Fatalf("NextScript returned error: %v", err)
	}
	if first.ID != "hello.py" || first.Source != "print('hello')\n" {
		t.Fatalf("unexpected first script %+v", first)
	}

	second, err := service.NextScript(context.Background())
	if err != nil {
		t.Fatalf("NextScript returned error: %v", err)
	}
	if second.Name != "time.py" {
		t.Fatalf("expected second script 'time.py', got %q", second.Name)
	}

	if _, err := service.NextScript(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestNextScriptReportsUnreadableFiles(t *testing.T) {
	t.Parallel()

	service := NewService(filepath.Join(t.TempDir(), "missing.py"))
	if _, err := service.NextScript(context.Background()); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestNextScriptContextCancellation(t *testing.T) {
	t.Parallel()

	service := NewService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.NextScript(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAddScriptAssignsIDWhenMissing(t *testing.T) {
	t.Parallel()

	service := NewService()
	service.AddScript(execution.Script{Source: "print('hello')"})

	script, err := service.NextScript(context.Background())
	if err != nil {
		t.Fatalf("NextScript returned error: %v", err)
	}

	if script.ID == "" {
		t.Fatalf("expected generated script ID")
	}
	if script.Source != "print('hello')" {
		t.Fatalf("unexpected script source: %q", script.Source)
	}
}

func TestAddScriptQueuesAfterFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	service := NewService(writeScript(t, dir, "first.py", "pass\n"))
	service.AddScript(execution.Script{ID: "custom", Source: "print('x')"})

	first, _ := service.NextScript(context.Background())
	second, err := service.NextScript(context.Background())
	if err != nil {
		t.Fatalf("NextScript returned error: %v", err)
	}

	if first.ID != "first.py" || second.ID != "custom" {
		t.Fatalf("unexpected order: %q then %q", first.ID, second.ID)
	}
}
