/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mininotion/internal/domain"
	applog "mininotion/internal/log"
	"mininotion/internal/pagestore"
	"mininotion/internal/session"
	"mininotion/internal/undo"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
// Only preferences live here; workspace pages are never written to disk.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	Theme        string `yaml:"theme"` // "system" | "light" | "dark"
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
}

type WorkspaceConfig struct {
	TitlePrefix    string `yaml:"title_prefix"`
	LastPagePolicy string `yaml:"last_page_policy"` // replace | guard | allow-empty
	RecentLimit    int    `yaml:"recent_limit"`
}

type UndoConfig struct {
	MaxDepth int `yaml:"max_depth"`
	MaxBytes int `yaml:"max_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	General       GeneralConfig   `yaml:"general"`
	Workspace     WorkspaceConfig `yaml:"workspace"`
	Undo          UndoConfig      `yaml:"undo"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	uc := undo.DefaultConfig()
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system", WindowWidth: 1000, WindowHeight: 700},
		Workspace:     WorkspaceConfig{TitlePrefix: "Untitled", LastPagePolicy: string(domain.PolicyReplace), RecentLimit: 10},
		Undo:          UndoConfig{MaxDepth: uc.MaxDepth, MaxBytes: uc.MaxBytes},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "MN_CONFIG"
	EnvTheme          = "MN_THEME"
	EnvTitlePrefix    = "MN_TITLE_PREFIX"
	EnvLastPagePolicy = "MN_LAST_PAGE_POLICY"
	EnvRecentLimit    = "MN_RECENT_LIMIT"
	EnvUndoMaxDepth   = "MN_UNDO_MAX_DEPTH"
	EnvUndoMaxBytes   = "MN_UNDO_MAX_BYTES"

	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
)

// ConfigPath returns the per-user config file path. MN_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "MiniNotion")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "MiniNotion")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "mininotion")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "mininotion")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is logged and ignored so a bad edit never blocks startup.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			applog.WithComponent("config").Warn("ignoring malformed config file", "path", path, "err", err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate reports configuration values the application cannot honor.
func (c AppConfig) Validate() error {
	var errs []error
	if _, err := domain.ParseLastPagePolicy(c.Workspace.LastPagePolicy); err != nil {
		errs = append(errs, fmt.Errorf("workspace.last_page_policy: %w", err))
	}
	if strings.TrimSpace(c.Workspace.TitlePrefix) == "" {
		errs = append(errs, errors.New("workspace.title_prefix: must not be empty"))
	}
	if c.Workspace.RecentLimit < 0 {
		errs = append(errs, errors.New("workspace.recent_limit: must not be negative"))
	}
	if c.Undo.MaxDepth < 0 {
		errs = append(errs, errors.New("undo.max_depth: must not be negative"))
	}
	return errors.Join(errs...)
}

// Policy returns the parsed last-page policy, falling back to the default on bad input.
func (w WorkspaceConfig) Policy() domain.LastPagePolicy {
	p, err := domain.ParseLastPagePolicy(w.LastPagePolicy)
	if err != nil {
		return domain.PolicyReplace
	}
	return p
}

// History returns the undo caps for a new session.
func (u UndoConfig) History() undo.Config {
	return undo.Config{MaxDepth: u.MaxDepth, MaxBytes: u.MaxBytes}
}

// SessionOptions builds the options of a new editor session from the workspace and undo sections.
func (c AppConfig) SessionOptions() session.Options {
	return session.Options{
		Store:       pagestore.Options{TitlePrefix: c.Workspace.TitlePrefix, Policy: c.Workspace.Policy()},
		Undo:        c.Undo.History(),
		RecentLimit: c.Workspace.RecentLimit,
	}
}

// LogOptions maps the logging section onto logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.General.Theme); s != "" {
		dst.General.Theme = strings.ToLower(s)
	}
	if src.General.WindowWidth > 0 {
		dst.General.WindowWidth = src.General.WindowWidth
	}
	if src.General.WindowHeight > 0 {
		dst.General.WindowHeight = src.General.WindowHeight
	}
	// workspace
	if s := strings.TrimSpace(src.Workspace.TitlePrefix); s != "" {
		dst.Workspace.TitlePrefix = s
	}
	if s := strings.TrimSpace(src.Workspace.LastPagePolicy); s != "" {
		dst.Workspace.LastPagePolicy = strings.ToLower(s)
	}
	if src.Workspace.RecentLimit != 0 {
		dst.Workspace.RecentLimit = src.Workspace.RecentLimit
	}
	// undo
	if src.Undo.MaxDepth != 0 {
		dst.Undo.MaxDepth = src.Undo.MaxDepth
	}
	if src.Undo.MaxBytes != 0 {
		dst.Undo.MaxBytes = src.Undo.MaxBytes
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	text := func(env string, dst *string, lower bool) {
		v := strings.TrimSpace(os.Getenv(env))
		if v == "" {
			return
		}
		if lower {
			v = strings.ToLower(v)
		}
		*dst = v
	}
	number := func(env string, dst *int) {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(env))); err == nil {
			*dst = n
		}
	}

	text(EnvTheme, &cfg.General.Theme, true)
	text(EnvTitlePrefix, &cfg.Workspace.TitlePrefix, false)
	text(EnvLastPagePolicy, &cfg.Workspace.LastPagePolicy, true)
	number(EnvRecentLimit, &cfg.Workspace.RecentLimit)
	number(EnvUndoMaxDepth, &cfg.Undo.MaxDepth)
	number(EnvUndoMaxBytes, &cfg.Undo.MaxBytes)

	text(EnvLogLevel, &cfg.Logging.Level, true)
	text(EnvLogFormat, &cfg.Logging.Format, true)
	text(EnvLogFile, &cfg.Logging.File, false)
	if strings.TrimSpace(os.Getenv(EnvLogSource)) != "" {
		cfg.Logging.Source = applog.FromEnv().AddSource
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"general.theme":              EnvTheme,
		"workspace.title_prefix":     EnvTitlePrefix,
		"workspace.last_page_policy": EnvLastPagePolicy,
		"workspace.recent_limit":     EnvRecentLimit,
		"undo.max_depth":             EnvUndoMaxDepth,
		"undo.max_bytes":             EnvUndoMaxBytes,
		"logging.level":              EnvLogLevel,
		"logging.format":             EnvLogFormat,
		"logging.source":             EnvLogSource,
		"logging.file":               EnvLogFile,
	}[key]
	if env != "" && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
