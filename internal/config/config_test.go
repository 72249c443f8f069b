package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"houndgrip/internal/eventbus"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvServer, "")
	cs := NewConfigService(filepath.Join(t.TempDir(), "config.toml"))

	cfg, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, DefaultTimeout, cfg.RequestTimeout())
}

func TestLoadFromPathMissing(t *testing.T) {
	dir := t.TempDir()
	cs := NewConfigService(filepath.Join(dir, "config.toml"))
	_, err := cs.LoadFromPath(filepath.Join(dir, "nope.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(EnvServer, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
server = "https://hound.example.com"
timeout = "5s"

[preferences]
ignore_case = true
`), 0644))

	cfg, err := NewConfigService(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "https://hound.example.com", cfg.Server)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.True(t, cfg.Preferences.IgnoreCase)
	assert.False(t, cfg.Preferences.AutoHideAdvanced)
	assert.True(t, cfg.UISettings.ShowStats)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("server = [unterminated"), 0644))

	_, err := NewConfigService(path).Load()
	assert.Error(t, err)
}

func TestEnvOverridesServer(t *testing.T) {
	t.Setenv(EnvServer, "http://override:6080")
	cfg, err := NewConfigService(filepath.Join(t.TempDir(), "config.toml")).Load()
	require.NoError(t, err)
	assert.Equal(t, "http://override:6080", cfg.Server)
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv(EnvServer, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cs := NewConfigService(path)

	cfg := DefaultConfig()
	cfg.Server = "http://code:6080"
	cfg.Preferences = PreferenceSettings{AutoHideAdvanced: true, IgnoreCase: true}
	cfg.UISettings.ContextHighlight = false
	require.NoError(t, cs.Save(cfg))

	loaded, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestInvalidTimeoutFallsBack(t *testing.T) {
	cfg := &Config{Timeout: "soon"}
	assert.Equal(t, DefaultTimeout, cfg.RequestTimeout())
}

func TestPreferencesConcurrentAccess(t *testing.T) {
	prefs := NewPreferences(PreferenceSettings{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(on bool) {
			defer wg.Done()
			prefs.Set(PreferenceSettings{IgnoreCase: on, AutoHideAdvanced: on})
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			s := prefs.Settings()
			assert.Equal(t, s.IgnoreCase, s.AutoHideAdvanced)
		}()
	}
	wg.Wait()
}

func TestWatchReloadsPreferences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("server = \"http://a\"\n"), 0644))

	bus := eventbus.New()
	var reloads atomic.Int32
	bus.Subscribe(eventbus.EventConfigReloaded, func(e eventbus.DomainEvent) {
		assert.Equal(t, path, e.(eventbus.ConfigReloadedEvent).Path)
		reloads.Add(1)
	})

	cs := NewConfigServiceWithBus(path, bus)
	prefs := NewPreferences(PreferenceSettings{})
	var lastServer atomic.Value

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- cs.Watch(ctx, prefs, func(cfg *Config) { lastServer.Store(cfg.Server) })
	}()

	// rewrite until the watcher, which may still be registering, sees it
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("server = \"http://b\"\n[preferences]\nignore_case = true\n"), 0644)
		return prefs.IgnoreCase()
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, "http://b", lastServer.Load())
	assert.Positive(t, reloads.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatchIgnoresOtherFilesAndBadContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[preferences]\nignore_case = true\n"), 0644))

	cs := NewConfigService(path)
	prefs := NewPreferences(PreferenceSettings{IgnoreCase: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cs.Watch(ctx, prefs, nil) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("[preferences]\nignore_case = false\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("[preferences\n"), 0644))
	time.Sleep(200 * time.Millisecond)

	assert.True(t, prefs.IgnoreCase())

	cancel()
	require.NoError(t, <-done)
}
