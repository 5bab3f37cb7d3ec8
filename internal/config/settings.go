package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the runtime options of the service.
// Zero values are replaced by defaults when loading.
type Settings struct {
	Source        SourceSettings `yaml:"source"`
	Server        ServerSettings `yaml:"server"`
	Language      string         `yaml:"language"`
	TitleHeadline string         `yaml:"title_headline"`
}

// SourceSettings locates the delimited file to convert.
type SourceSettings struct {
	Mode      string `yaml:"mode"` // SourceModeWeb or SourceModeLocal; empty disables synchronization
	Path      string `yaml:"path"`
	URL       string `yaml:"url"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"` // Prefer the OS keyring; see KeyringService
	Delimiter string `yaml:"delimiter"`
}

// ServerSettings configures the local HTTP server and refresh schedule.
type ServerSettings struct {
	Port           string `yaml:"port"`
	RefreshMinutes int    `yaml:"refresh_minutes"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		Source: SourceSettings{Delimiter: DefaultDelimiter},
		Server: ServerSettings{
			Port:           DefaultPort,
			RefreshMinutes: DefaultRefreshMin,
		},
		Language: DefaultLanguage,
	}
}

// LoadSettings reads a YAML settings file on top of the defaults.
// An empty path returns the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}
	if err := s.decode(raw); err != nil {
		return s, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}
	return s, nil
}

func (s *Settings) decode(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// SetSource points the settings at a URL or a local path, inferring the mode.
func (s *Settings) SetSource(source string) {
	if u, err := url.Parse(source); err == nil && (u.Scheme == SchemeHTTP || u.Scheme == SchemeHTTPS) {
		s.Source.Mode = SourceModeWeb
		s.Source.URL = source
		return
	}
	s.Source.Mode = SourceModeLocal
	s.Source.Path = source
}

// RefreshInterval returns the synchronization period.
func (s Settings) RefreshInterval() time.Duration {
	minutes := s.Server.RefreshMinutes
	if minutes <= 0 {
		minutes = DefaultRefreshMin
	}
	return time.Duration(minutes) * time.Minute
}

// Validate reports every invalid option at once.
func (s Settings) Validate() error {
	var errs []error

	if err := ValidatePort(s.Server.Port); err != nil {
		errs = append(errs, err)
	}
	if m := s.Server.RefreshMinutes; m < MinRefreshMin || m > MaxRefreshMin {
		errs = append(errs, fmt.Errorf("%s: %d", ErrRefreshRange, m))
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrLanguage, s.Language))
	}
	if _, err := DelimiterRune(s.Source.Delimiter); err != nil {
		errs = append(errs, err)
	}

	switch s.Source.Mode {
	case "":
	case SourceModeLocal:
		if strings.TrimSpace(s.Source.Path) == "" {
			errs = append(errs, errors.New(ErrLocalPathEmpty))
		}
	case SourceModeWeb:
		if strings.TrimSpace(s.Source.URL) == "" {
			errs = append(errs, errors.New(ErrWebURLEmpty))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrModeUnsupport, s.Source.Mode))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}
	return nil
}

// ValidatePort checks that port is a number in the TCP port range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %q", ErrPortNumber, port)
	}
	if n < MinPort || n > MaxPort {
		return fmt.Errorf("%s: %d", ErrPortRange, n)
	}
	return nil
}

// DelimiterRune resolves a named delimiter. An empty name selects DefaultDelimiter.
func DelimiterRune(name string) (rune, error) {
	if name == "" {
		name = DefaultDelimiter
	}
	d, ok := Delimiters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%s: %q", ErrDelimiter, name)
	}
	return d, nil
}
