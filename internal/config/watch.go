package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch watches the config file with Viper (WatchConfig + OnConfigChange) and
// hot-reloads. Run in a goroutine. On reload, updates the in-memory config and
// runs RegisterOnReload callbacks.
func Watch(ctx context.Context) {
	path := Path()
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		slog.Warn("config watch initial read failed", "path", path, "error", err)
		return
	}

	reload := func() {
		prev := Get()
		cfg, err := Load(path)
		if err != nil {
			slog.Warn("config hot-reload load failed", "path", path, "error", err)
			return
		}
		Set(cfg)
		notifyReload(cfg)
		slog.Info("config hot-reloaded", reloadAttrs(prev, cfg, path)...)
	}

	var debounce *time.Timer
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		if filepath.Clean(e.Name) != filepath.Clean(path) {
			return
		}
		if debounce != nil {
			debounce.Stop()
		}
		debounce = time.AfterFunc(200*time.Millisecond, reload)
	})

	<-ctx.Done()
}

// reloadAttrs builds the hot-reload log attributes, surfacing the settings an
// operator edits live: the generator selection, the catalog sync schedule,
// and whether the auth token rotated. Secrets never appear in the log.
func reloadAttrs(prev, next *Config, path string) []any {
	attrs := []any{"path", path}
	if prev == nil {
		return attrs
	}
	if prev.Generator.Provider != next.Generator.Provider || prev.Generator.Model != next.Generator.Model {
		attrs = append(attrs, "provider", next.Generator.Provider, "model", next.Generator.Model)
	}
	if prev.Catalog.SyncSchedule != next.Catalog.SyncSchedule {
		attrs = append(attrs, "syncSchedule", next.Catalog.SyncSchedule)
	}
	if prev.Server.Auth.Token != next.Server.Auth.Token {
		attrs = append(attrs, "tokenRotated", true)
	}
	return attrs
}
