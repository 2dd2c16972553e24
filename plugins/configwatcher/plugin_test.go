package configwatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/apicaller/pkg/poller"
)

type recordingSetter struct {
	mu   sync.Mutex
	sets []map[string]any
}

func (r *recordingSetter) SetOptions(opts map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, opts)
}

func (r *recordingSetter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}

func (r *recordingSetter) last() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sets) == 0 {
		return nil
	}
	return r.sets[len(r.sets)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPlugin_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loader := func(p string) (map[string]any, error) {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return map[string]any{"useragent": string(b)}, nil
	}

	setter := &recordingSetter{}
	plugin := New(Config{Loader: loader, DebounceDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := plugin.Initialize(ctx, poller.PluginConfig{ConfigPath: path, Options: setter}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer plugin.Shutdown(context.Background())

	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	waitFor(t, func() bool { return setter.count() > 0 })

	if got := setter.last()["useragent"]; got != "v2" {
		t.Errorf("useragent = %v, want v2", got)
	}
	if plugin.Reloads() == 0 {
		t.Error("Reloads() = 0, want at least 1")
	}
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	setter := &recordingSetter{}
	plugin := New(Config{
		Loader:        func(string) (map[string]any, error) { return map[string]any{}, nil },
		DebounceDelay: 10 * time.Millisecond,
	})
	if err := plugin.Initialize(context.Background(), poller.PluginConfig{ConfigPath: path, Options: setter}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer plugin.Shutdown(context.Background())

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	time.Sleep(150 * time.Millisecond)

	if n := setter.count(); n != 0 {
		t.Errorf("SetOptions called %d times, want 0", n)
	}
}

func TestPlugin_RetriesFailedLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var mu sync.Mutex
	calls := 0
	loader := func(string) (map[string]any, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return nil, errors.New("half-written file")
		}
		return map[string]any{"verbose": true}, nil
	}

	setter := &recordingSetter{}
	plugin := New(Config{
		Loader:        loader,
		DebounceDelay: 10 * time.Millisecond,
		RetryInterval: 20 * time.Millisecond,
	})
	if err := plugin.Initialize(context.Background(), poller.PluginConfig{ConfigPath: path, Options: setter}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer plugin.Shutdown(context.Background())

	if err := os.WriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	waitFor(t, func() bool { return setter.count() > 0 })

	if got := setter.last()["verbose"]; got != true {
		t.Errorf("verbose = %v, want true", got)
	}
}

func TestPlugin_Name(t *testing.T) {
	if got := New(DefaultConfig()).Name(); got != "configwatcher" {
		t.Errorf("Name() = %q, want configwatcher", got)
	}
}

func TestPlugin_DisabledWithoutConfigPath(t *testing.T) {
	plugin := New(DefaultConfig())
	if err := plugin.Initialize(context.Background(), poller.PluginConfig{Options: &recordingSetter{}}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := plugin.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_RequiresLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	plugin := New(DefaultConfig())
	err := plugin.Initialize(context.Background(), poller.PluginConfig{ConfigPath: path, Options: &recordingSetter{}})
	if !errors.Is(err, ErrNoLoader) {
		t.Errorf("Initialize() error = %v, want ErrNoLoader", err)
	}
}
