package pathsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/result"
)

func newTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "internal", "widget"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "internal", "widget", "widget.go"), []byte("package widget"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("ignored.txt\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.txt"), []byte("skip me"), 0o644))
	return root
}

func newTestActor(t *testing.T) (*actor.Actor, chan message.Envelope) {
	t.Helper()
	out := make(chan message.Envelope, 256)
	h := New(context.Background())
	a := actor.New("pathsearch", h, actor.SenderFunc(func(e message.Envelope) { out <- e }), 256)
	t.Cleanup(a.Shutdown)
	return a, out
}

func drain(t *testing.T, out chan message.Envelope, timeout time.Duration) []message.Envelope {
	t.Helper()
	var got []message.Envelope
	deadline := time.After(timeout)
	for {
		select {
		case e := <-out:
			got = append(got, e)
		case <-deadline:
			return got
		}
	}
}

func TestPathSearchFindsFilesAndDirectoriesAndHonoursIgnore(t *testing.T) {
	root := newTestTree(t)
	a, out := newTestActor(t)

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{
		Query: "widget", Root: root, CorrelationID: "gen-1",
	}))

	envs := drain(t, out, 300*time.Millisecond)
	require.NotEmpty(t, envs)
	assert.Equal(t, MethodClearResults, envs[0].Method)
	assert.Equal(t, MethodCompleteSearch, envs[len(envs)-1].Method)

	var foundDir, foundFile bool
	for _, e := range envs {
		if e.Method != MethodPushSearchResult {
			continue
		}
		r := e.Payload.(result.PushSearchResult)
		assert.Equal(t, "gen-1", e.CorrelationID)
		if r.Filename == filepath.Join("internal", "widget") {
			assert.Contains(t, r.Content, "[DIR]")
			foundDir = true
		}
		if r.Filename == filepath.Join("internal", "widget", "widget.go") {
			assert.Contains(t, r.Content, "[FILE]")
			foundFile = true
		}
		assert.NotContains(t, r.Filename, "ignored.txt")
	}
	assert.True(t, foundDir, "expected the matching directory among results")
	assert.True(t, foundFile, "expected the matching file among results")
}

func TestPathSearchEmptyQuerySuppressesExecution(t *testing.T) {
	root := newTestTree(t)
	a, out := newTestActor(t)

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{
		Query: "", Root: root, CorrelationID: "gen-empty",
	}))

	envs := drain(t, out, 150*time.Millisecond)
	require.Len(t, envs, 2)
	assert.Equal(t, MethodClearResults, envs[0].Method)
	assert.Equal(t, MethodCompleteSearch, envs[1].Method)
}
