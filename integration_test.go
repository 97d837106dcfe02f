// +build integration

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

const testBinary = "threadplay_test"

func buildBinary(t testing.TB) {
	t.Helper()
	buildCmd := exec.Command("go", "build", "-o", testBinary, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	t.Cleanup(func() { os.Remove(testBinary) })
}

// writeConfig writes config.yaml under a temporary HOME and returns the
// environment to run the binary with
func writeConfig(t testing.TB, body string) []string {
	t.Helper()
	home := t.TempDir()
	dir := filepath.Join(home, ".config", "threadplay")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return append(os.Environ(), "HOME="+home)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().String()
}

// TestListCommand prints a thread served by a fake enqueue server
func TestListCommand(t *testing.T) {
	buildBinary(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enqueue/wsg/thread/123" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"subject":"loops","webms":[
			{"url":"/media/a.webm","filename":"a.webm","thumbnail":"/media/a.jpg"},
			{"url":"/media/b.webm","filename":"b.webm","thumbnail":"/media/b.jpg"}]}`)
	}))
	defer server.Close()

	env := writeConfig(t, fmt.Sprintf("endpoint: %s\nboards_endpoint: \"\"\n", server.URL))

	cmd := exec.Command("./"+testBinary, "list", "https://boards.example.org/wsg/thread/123#2",
		"--format", "{{if .Current}}*{{end}}{{.Index}} {{.Title}}")
	cmd.Env = env
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	want := "/wsg/ - loops\n1 a.webm\n*2 b.webm\n"
	if string(output) != want {
		t.Errorf("list output = %q, want %q", output, want)
	}
}

// TestListCommandMissingThread exits non-zero when the thread does not exist
func TestListCommandMissingThread(t *testing.T) {
	buildBinary(t)

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	env := writeConfig(t, fmt.Sprintf("endpoint: %s\nboards_endpoint: \"\"\nhttp:\n  retries: 1\n", server.URL))

	cmd := exec.Command("./"+testBinary, "list", "https://boards.example.org/wsg/thread/404")
	cmd.Env = env
	if err := cmd.Run(); err == nil {
		t.Error("list of a missing thread should fail")
	}
}

// TestPlayLifecycle plays local files headless, drives the player through
// the control commands and stops it with SIGINT
func TestPlayLifecycle(t *testing.T) {
	buildBinary(t)

	addr := freeAddr(t)
	env := writeConfig(t, fmt.Sprintf(`listen_addr: %s
player:
  command: sh
  args: ["-c", "sleep 30", "sh", "{url}"]
`, addr))

	tmpDir := t.TempDir()
	var files []string
	for _, name := range []string{"one.webm", "two.webm"} {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	play := exec.CommandContext(ctx, "./"+testBinary, "play", "--no-tui",
		"--files", strings.Join(files, ","),
		"--log-level", "debug")
	play.Env = env
	if err := play.Start(); err != nil {
		t.Fatalf("Failed to start player: %v", err)
	}

	status := func() (string, error) {
		cmd := exec.Command("./"+testBinary, "status", "--addr", addr)
		cmd.Env = env
		out, err := cmd.CombinedOutput()
		return string(out), err
	}

	deadline := time.Now().Add(10 * time.Second)
	var out string
	var err error
	for time.Now().Before(deadline) {
		if out, err = status(); err == nil {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("status never reported playing: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1/2 one.webm - Local Files") {
		t.Errorf("status = %q, want first file playing", out)
	}

	next := exec.Command("./"+testBinary, "next", "--addr", addr)
	next.Env = env
	if out, err := next.CombinedOutput(); err != nil {
		t.Fatalf("next failed: %v\n%s", err, out)
	}

	deadline = time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if out, _ = status(); strings.Contains(out, "2/2 two.webm") {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !strings.Contains(out, "2/2 two.webm") {
		t.Errorf("status after next = %q, want second file playing", out)
	}

	if err := play.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("Failed to signal player: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- play.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("player exited with error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Error("player did not stop within 10 seconds")
	}
}

// BenchmarkListCommand benchmarks the performance of the "list" command
func BenchmarkListCommand(b *testing.B) {
	buildBinary(b)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"subject":"","webms":[{"url":"/a.webm","filename":"a.webm","thumbnail":""}]}`)
	}))
	defer server.Close()

	env := writeConfig(b, fmt.Sprintf("endpoint: %s\nboards_endpoint: \"\"\n", server.URL))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command("./"+testBinary, "list", "/wsg/thread/1")
		cmd.Env = env
		if err := cmd.Run(); err != nil {
			b.Fatalf("list failed: %v", err)
		}
	}
}
