package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/pipeline"
)

// MockCertifier implements Certifier
type MockCertifier struct {
	Fail  bool
	Panic string // path that panics
}

func (m *MockCertifier) Process(ctx context.Context, req pipeline.Request) *model.Result {
	time.Sleep(5 * time.Millisecond) // Simulate work
	if req.Path == m.Panic {
		panic("certifier blew up")
	}
	res := model.NewResult("id", req.Path)
	if m.Fail {
		res.AddError("text too short")
		return res
	}
	res.Success = true
	res.CertificationReady = true
	res.HumanReviewRequired = false
	res.CertificationProfile = req.Profile
	return res
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	processor := NewBatchProcessor(&MockCertifier{}, 2, 0, 0)

	paths := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}
	results := processor.ProcessPaths(context.Background(), paths, pipeline.Request{Profile: model.ProfileInvoiceStrict})

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("expected %s at index %d, got %s", paths[i], i, res.Path)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
		if res.Result.CertificationProfile != model.ProfileInvoiceStrict {
			t.Errorf("expected template profile to be applied, got %q", res.Result.CertificationProfile)
		}
	}

	s := Summarize(results)
	if s.Ready != 5 || s.Failed != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestBatchProcessor_ManyJobs(t *testing.T) {
	processor := NewBatchProcessor(&MockCertifier{}, 2, 0, 0)

	paths := make([]string, 40)
	for i := range paths {
		paths[i] = filepath.Join("docs", string(rune('a'+i%26))+".txt")
	}
	results := processor.ProcessPaths(context.Background(), paths, pipeline.Request{})
	if len(results) != 40 {
		t.Fatalf("expected 40 results, got %d", len(results))
	}
}

func TestBatchProcessor_FailuresAndPanics(t *testing.T) {
	processor := NewBatchProcessor(&MockCertifier{Panic: "bad.txt"}, 2, 0, 0)

	results := processor.ProcessPaths(context.Background(), []string{"ok.txt", "bad.txt"}, pipeline.Request{})
	if results[0].Error != nil {
		t.Errorf("unexpected error: %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected the panicking document to report an error")
	}

	s := Summarize(results)
	if s.Ready != 1 || s.Failed != 1 {
		t.Errorf("unexpected summary %+v", s)
	}

	failing := NewBatchProcessor(&MockCertifier{Fail: true}, 1, 0, 0)
	s = Summarize(failing.ProcessPaths(context.Background(), []string{"x.txt"}, pipeline.Request{}))
	if s.Failed != 1 {
		t.Errorf("expected unsuccessful result to count as failed, got %+v", s)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockCertifier{}, 2, 0, 0)

	results := processor.ProcessPaths(context.Background(), []string{}, pipeline.Request{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&MockCertifier{}, 2, 0, 0)
	results := processor.ProcessPaths(ctx, []string{"a.txt", "b.txt"}, pipeline.Request{})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("expected context.Canceled for %s, got %v", r.Path, r.Error)
		}
	}
}

func TestReadPathsFromFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "docs.txt")
	writeFile(t, list, "contract.txt\n# comment\n/abs/invoice.html\n   \ncontract.txt   \n")

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "contract.txt"), "/abs/invoice.html"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d: %v", len(expected), len(paths), paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected path %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	_, err := ReadPathsFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "a.html"), "a")
	writeFile(t, filepath.Join(dir, "a.html.compensation.yaml"), "annual_total: 1")
	writeFile(t, filepath.Join(dir, ".hidden"), "h")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := ResolveInput(dir)
	if err != nil {
		t.Fatalf("ResolveInput failed: %v", err)
	}
	expected := []string{filepath.Join(dir, "a.html"), filepath.Join(dir, "b.txt")}
	if len(paths) != 2 || paths[0] != expected[0] || paths[1] != expected[1] {
		t.Errorf("expected %v, got %v", expected, paths)
	}
}

func TestProcessInput_ListFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "docs.txt")
	writeFile(t, list, "one.txt\ntwo.txt\n")

	processor := NewBatchProcessor(&MockCertifier{}, 2, 0, 0)
	results, err := processor.ProcessInput(context.Background(), list, pipeline.Request{})
	if err != nil {
		t.Fatalf("ProcessInput failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}

	if _, err := processor.ProcessInput(context.Background(), filepath.Join(dir, "missing"), pipeline.Request{}); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestCertifyResult_GetError(t *testing.T) {
	r1 := &CertifyResult{Path: "a.txt"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("rate limit")
	r2 := &CertifyResult{Path: "a.txt", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
