package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spanlens/spanlens/internal/config/data"
)

// Default values
const (
	DefaultAPITimeout      = 30 * time.Second
	DefaultPageSize        = 100
	DefaultScrollThreshold = 10
)

// SpanLens represents the spanlens global configuration.
type SpanLens struct {
	APITimeout      string      `yaml:"apiTimeout"`
	DefaultView     string      `yaml:"defaultView"`
	Project         string      `yaml:"project,omitempty"`
	Dataset         string      `yaml:"dataset,omitempty"`
	PageSize        int         `yaml:"pageSize"`
	ScrollThreshold int         `yaml:"scrollThreshold"`
	Source          data.Source `yaml:"source"`
	UI              data.UI     `yaml:"ui"`
	Logger          data.Logger `yaml:"logger"`

	activeProject string
	activeConfig  *data.Config
	dir           *data.Dir
	mx            sync.RWMutex
}

// NewSpanLens creates a SpanLens with default settings.
func NewSpanLens() *SpanLens {
	return &SpanLens{
		APITimeout:      DefaultAPITimeout.String(),
		DefaultView:     data.DefaultView,
		PageSize:        DefaultPageSize,
		ScrollThreshold: DefaultScrollThreshold,
		Source:          data.NewSource(),
		Logger:          data.Logger{Level: DefaultLogLevel},
		dir:             data.NewDir(),
	}
}

// Validate ensures SpanLens has valid settings.
func (s *SpanLens) Validate() error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.APITimeout == "" {
		s.APITimeout = DefaultAPITimeout.String()
	}
	if s.DefaultView == "" {
		s.DefaultView = data.DefaultView
	}
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.ScrollThreshold <= 0 {
		s.ScrollThreshold = DefaultScrollThreshold
	}
	if s.Logger.Level == "" {
		s.Logger.Level = DefaultLogLevel
	}

	return s.Source.Validate()
}

// Override applies CLI flag overrides. Unset flags keep the file settings.
func (s *SpanLens) Override(flags *data.Flags) {
	if flags == nil {
		return
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	overrideString(&s.DefaultView, flags.Command)
	overrideString(&s.Project, flags.Project)
	overrideString(&s.Dataset, flags.Dataset)
	overrideString(&s.Logger.Level, flags.LogLevel)
	overrideString(&s.Logger.File, flags.LogFile)
	overrideString(&s.Source.Kind, flags.Source)
	overrideString(&s.Source.Endpoint, flags.Endpoint)
	overrideString(&s.Source.Profile, flags.Profile)
	overrideString(&s.Source.Region, flags.Region)
	overrideString(&s.Source.Bucket, flags.Bucket)
	overrideString(&s.Source.DBPath, flags.DBPath)
	if IsIntSet(flags.PageSize) {
		s.PageSize = *flags.PageSize
	}
	if IsIntSet(flags.Threshold) {
		s.ScrollThreshold = *flags.Threshold
	}
	if IsBoolSet(flags.Wide) {
		s.UI.Wide = true
	}
	if IsBoolSet(flags.Logoless) {
		s.UI.Logoless = true
	}
	if IsBoolSet(flags.Crumbsless) {
		s.UI.Crumbsless = true
	}
}

func overrideString(dst *string, flag *string) {
	if IsStringSet(flag) {
		*dst = *flag
	}
}

// ActivateProject loads the per-project settings.
func (s *SpanLens) ActivateProject(project string) (*data.ProjectContext, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	cfg, err := s.dir.Load(project)
	if err != nil {
		return nil, fmt.Errorf("failed to load config for project %q: %w", project, err)
	}
	s.activeProject = project
	s.activeConfig = cfg

	return cfg.GetContext(), nil
}

// ActiveProject returns the currently active project.
func (s *SpanLens) ActiveProject() string {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.activeProject
}

// ActiveConfig returns the current project-specific configuration.
func (s *SpanLens) ActiveConfig() *data.Config {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.activeConfig
}

// SaveActiveConfig persists the per-project settings.
func (s *SpanLens) SaveActiveConfig() error {
	s.mx.RLock()
	cfg, dir := s.activeConfig, s.dir
	s.mx.RUnlock()

	if cfg == nil {
		return nil
	}
	return dir.Save(cfg)
}

// GetAPITimeout returns the parsed API timeout duration.
func (s *SpanLens) GetAPITimeout() (time.Duration, error) {
	s.mx.RLock()
	timeoutStr := s.APITimeout
	s.mx.RUnlock()

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf("invalid API timeout %q: %w", timeoutStr, err)
	}

	return timeout, nil
}

// SetDir points the per-project settings at another root.
func (s *SpanLens) SetDir(d *data.Dir) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.dir = d
}

// Projects lists the projects holding saved settings.
func (s *SpanLens) Projects() ([]string, error) {
	s.mx.RLock()
	dir := s.dir
	s.mx.RUnlock()

	return dir.ListProjects()
}

// SwitchProject activates a project and makes it the scope of new views.
// The dataset follows the project settings when they name one.
func (s *SpanLens) SwitchProject(project string) (*data.ProjectContext, error) {
	ctx, err := s.ActivateProject(project)
	if err != nil {
		return nil, err
	}

	s.mx.Lock()
	defer s.mx.Unlock()
	s.Project = project
	if ctx.Dataset != "" {
		s.Dataset = ctx.Dataset
	}

	return ctx, nil
}
