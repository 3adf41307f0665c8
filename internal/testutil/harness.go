package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/deckgo/internal/app"
	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a harness run.
type HarnessResult struct {
	Dir       string
	LogOutput string
	Err       error
	App       *app.App
	Deck      *deck.Deck
}

// WriteFiles writes files, keyed by slash-separated relative path, below a
// fresh temporary directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// RunParseTest writes files to a temporary directory, loads the schemas found
// under "schemas/" and parses deckName. cfg.SchemaPaths is ignored.
func RunParseTest(t *testing.T, files map[string]string, deckName string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunParseTestWithContext(context.Background(), t, files, deckName, cfg)
}

// RunParseTestWithContext is RunParseTest with a caller supplied context.
func RunParseTestWithContext(ctx context.Context, t *testing.T, files map[string]string, deckName string, cfg app.Config) *HarnessResult {
	t.Helper()

	dir := WriteFiles(t, files)
	cfg.SchemaPaths = []string{filepath.Join(dir, "schemas")}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	config, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp := app.NewApp(logBuffer, config)
	t.Cleanup(func() { _ = testApp.Close() })

	res := &HarnessResult{Dir: dir, App: testApp}
	if err := testApp.LoadSchemas(ctx); err != nil {
		res.Err = err
	} else {
		res.Deck, res.Err = testApp.Parse(ctx, filepath.Join(dir, filepath.FromSlash(deckName)))
	}

	if os.Getenv("DECKGO_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	res.LogOutput = logBuffer.String()
	return res
}
