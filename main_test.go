package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/papyrus-clamp/logging"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTextCommand(t *testing.T) {
	out, err := execute(t, "", "text", "--width", "20", "--lines", "1", "The quick brown fox jumps. Over the lazy dog.")
	require.NoError(t, err)
	assert.Equal(t, "The quick brown fox…\n", out)
}

func TestTextCommandSplitAndEllipsis(t *testing.T) {
	out, err := execute(t, "", "text", "--width", "20", "--lines", "1", "--ellipsis", "...", "--split", "space", "The quick brown fox jumps over")
	require.NoError(t, err)
	assert.Equal(t, "The quick brown f...\n", out)
}

func TestTextCommandReadsStdin(t *testing.T) {
	out, err := execute(t, "The quick brown fox jumps. Over the lazy dog.\n", "text", "--width", "20", "--lines", "2", "-")
	require.NoError(t, err)
	assert.Equal(t, "The quick brown fox\njumps. Over the laz…\n", out)
}

func TestTextCommandLeavesShortText(t *testing.T) {
	out, err := execute(t, "", "text", "--width", "40", "--lines", "3", "short")
	require.NoError(t, err)
	assert.Equal(t, "short\n", out)
}

func TestTextCommandMarkup(t *testing.T) {
	out, err := execute(t, "", "text", "--html", "--markup", "--width", "20", "--lines", "1",
		"--marker", `<a href="#">more</a>`, "The quick <b>brown</b> fox jumps over the lazy dog")
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="#">more</a>`)
	assert.NotContains(t, out, "lazy")
}

func TestTextCommandSteps(t *testing.T) {
	out, err := execute(t, "", "text", "--steps", "--width", "20", "--lines", "1", "The quick brown fox jumps. Over the lazy dog.")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "The quick brown fox…", lines[len(lines)-1])
}

func TestTextCommandInvalidTarget(t *testing.T) {
	_, err := execute(t, "", "text", "--lines", "lots", "abc")
	require.Error(t, err)
}

func TestTextCommandReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papyrus-clamp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clamp:\n  lines: \"1\"\n  ellipsis: \"...\"\nterminal:\n  width: 20\n"), 0o644))

	out, err := execute(t, "", "--config", path, "text", "--split", "space", "The quick brown fox jumps over")
	require.NoError(t, err)
	assert.Equal(t, "The quick brown f...\n", out)
}

func TestHighlightSuffix(t *testing.T) {
	color.NoColor = false
	defer func() { color.NoColor = true }()

	got := highlightSuffix("The quick brown fox…", "…")
	assert.True(t, strings.HasPrefix(got, "The quick brown fox"))
	assert.NotEqual(t, "The quick brown fox…", got)
	assert.Equal(t, "no marker", highlightSuffix("no marker", "…"))
}

const renderDoc = `doc Fox v1 {
  meta { title: "Fox" }
  page A6 margin 10mm {
    box width 60mm clamp 2 frame true {
      "Hello, ${user.name|guest}! The quick brown fox jumps. Over the lazy dog. "
      "Sphinx of black quartz, judge my vow. Pack my box with five dozen liquor jugs."
    }
  }
}`

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "fox.papyrus")
	out := filepath.Join(dir, "out", "fox.pdf")
	debug := filepath.Join(dir, "out", "fox.yaml")
	require.NoError(t, os.WriteFile(in, []byte(renderDoc), 0o644))

	stdout, err := execute(t, "", "render", "--in", in, "--out", out, "--debug", debug, "--data", `{"user":{"name":"Ada"}}`)
	require.NoError(t, err)
	assert.Contains(t, stdout, out)

	pdf, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	dump, err := os.ReadFile(debug)
	require.NoError(t, err)
	assert.Contains(t, string(dump), "Ada!")
	assert.Contains(t, string(dump), "clamp:")
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "render", "--in", filepath.Join(dir, "missing.papyrus"), "--out", filepath.Join(dir, "x.pdf"))
	require.Error(t, err)

	in := filepath.Join(dir, "bad.papyrus")
	require.NoError(t, os.WriteFile(in, []byte("doc {"), 0o644))
	_, err = execute(t, "", "render", "--in", in, "--out", filepath.Join(dir, "x.pdf"))
	require.Error(t, err)

	_, err = execute(t, "", "render", "--in", in, "--data", "{", "--out", filepath.Join(dir, "x.pdf"))
	require.Error(t, err)
}

func TestDemoDocumentRenders(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.pdf")
	_, err := execute(t, "", "render", "--in", "examples/demo.papyrus", "--out", out, "--data", `{"user":{"name":"Ada"}}`)
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWatchFileDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.papyrus")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 50*time.Millisecond, logging.Discard(), func() { changed <- struct{}{} })
	}()

	// 等待监听建立后再写入
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("c"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a change notification")
	}
	select {
	case <-changed:
		t.Fatalf("writes within the debounce window must be merged")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("watchFile did not stop after cancel")
	}
}

func TestWatchFileSerializesSlowRebuilds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.papyrus")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var running, peak, calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, logging.Discard(), func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(150 * time.Millisecond)
			running.Add(-1)
			calls.Add(1)
		})
	}()

	time.Sleep(100 * time.Millisecond)
	// 每次写入间隔超过去抖时长，但短于一次重建
	for i := range 4 {
		require.NoError(t, os.WriteFile(path, []byte{byte('b' + i)}, 0o644))
		time.Sleep(40 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, int32(1), peak.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("watchFile did not stop after cancel")
	}
}
