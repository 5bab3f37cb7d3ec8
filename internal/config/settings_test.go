package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timeline/internal/config"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := config.LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)
	assert.NoError(t, s.Validate())
	assert.Equal(t, time.Duration(config.DefaultRefreshMin)*time.Minute, s.RefreshInterval())
}

func TestLoadSettings_File(t *testing.T) {
	path := writeSettings(t, `
source:
  mode: web
  url: https://example.com/events.csv
  user: alice
  delimiter: semicolon
server:
  port: "9090"
language: fr
title_headline: Histoire
`)

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, config.SourceModeWeb, s.Source.Mode)
	assert.Equal(t, "https://example.com/events.csv", s.Source.URL)
	assert.Equal(t, "alice", s.Source.User)
	assert.Equal(t, "semicolon", s.Source.Delimiter)
	assert.Equal(t, "9090", s.Server.Port)
	assert.Equal(t, config.DefaultRefreshMin, s.Server.RefreshMinutes, "Unset keys keep their default")
	assert.Equal(t, "fr", s.Language)
	assert.Equal(t, "Histoire", s.TitleHeadline)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, config.ErrSettingsRead)

	_, err = config.LoadSettings(writeSettings(t, "unknown_key: 1\n"))
	assert.ErrorContains(t, err, config.ErrSettingsParse)

	s, err := config.LoadSettings(writeSettings(t, ""))
	assert.NoError(t, err, "An empty file is the same as no file")
	assert.Equal(t, config.DefaultSettings(), s)
}

func TestSettings_SetSource(t *testing.T) {
	s := config.DefaultSettings()
	s.SetSource("http://example.com/a.csv")
	assert.Equal(t, config.SourceModeWeb, s.Source.Mode)
	assert.Equal(t, "http://example.com/a.csv", s.Source.URL)

	s = config.DefaultSettings()
	s.SetSource("data/events.csv")
	assert.Equal(t, config.SourceModeLocal, s.Source.Mode)
	assert.Equal(t, "data/events.csv", s.Source.Path)
}

func TestSettings_ValidateAggregates(t *testing.T) {
	s := config.DefaultSettings()
	s.Server.Port = "70000"
	s.Server.RefreshMinutes = 0
	s.Language = "de"
	s.Source.Delimiter = "colon"
	s.Source.Mode = "ftp"

	err := s.Validate()
	require.Error(t, err)
	for _, want := range []string{
		config.ErrSettingsInvalid,
		config.ErrPortRange,
		config.ErrRefreshRange,
		config.ErrLanguage,
		config.ErrDelimiter,
		config.ErrModeUnsupport,
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestSettings_ValidateSourceMode(t *testing.T) {
	s := config.DefaultSettings()
	s.Source.Mode = config.SourceModeLocal
	assert.ErrorContains(t, s.Validate(), config.ErrLocalPathEmpty)

	s.Source.Mode = config.SourceModeWeb
	assert.ErrorContains(t, s.Validate(), config.ErrWebURLEmpty)
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		port    string
		wantErr string
	}{
		{"18081", ""},
		{"1", ""},
		{"65535", ""},
		{"", config.ErrPortRequired},
		{"abc", config.ErrPortNumber},
		{"0", config.ErrPortRange},
		{"65536", config.ErrPortRange},
	}
	for _, tt := range tests {
		t.Run("Port "+tt.port, func(t *testing.T) {
			err := config.ValidatePort(tt.port)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	tests := []struct {
		name string
		want rune
	}{
		{"", ','},
		{"comma", ','},
		{"Semicolon", ';'},
		{"tab", '\t'},
		{" pipe ", '|'},
	}
	for _, tt := range tests {
		t.Run("Delimiter "+tt.name, func(t *testing.T) {
			got, err := config.DelimiterRune(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := config.DelimiterRune("colon")
	assert.ErrorContains(t, err, config.ErrDelimiter)
}
