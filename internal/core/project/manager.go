// Package project provides management of tfmux projects. A project is a
// directory containing a git repository with the Terraform configuration,
// identified by a generated ID and described by .tfmux/config.yaml.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	// MetaDir is the directory name for tfmux metadata inside a project
	MetaDir = ".tfmux"
	// ConfigFile is the filename for the project configuration
	ConfigFile = "config.yaml"
)

// Manager handles projects under a base directory. Each project is a
// subdirectory named by its ID.
type Manager struct {
	baseDir string
}

// NewManager creates a project manager rooted at baseDir
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// DefaultBaseDir returns the base directory for projects, honoring
// TFMUX_HOME when set.
func DefaultBaseDir() (string, error) {
	if dir := os.Getenv("TFMUX_HOME"); dir != "" {
		return filepath.Join(dir, "projects"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".tfmux", "projects"), nil
}

// Create creates a new project directory with its configuration
func (m *Manager) Create(name string) (*Info, error) {
	id := uuid.New().String()
	projectPath := filepath.Join(m.baseDir, id)

	if err := os.MkdirAll(projectPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	cfg := DefaultConfig()
	cfg.ID = id
	cfg.Name = name
	cfg.CreatedAt = time.Now().UTC()

	if err := m.saveConfig(projectPath, cfg); err != nil {
		_ = os.RemoveAll(projectPath)
		return nil, err
	}

	return &Info{
		ID:        id,
		Name:      name,
		Path:      projectPath,
		CreatedAt: cfg.CreatedAt,
	}, nil
}

// Path returns the directory for a project ID. The project need not exist.
func (m *Manager) Path(projectID string) string {
	return filepath.Join(m.baseDir, projectID)
}

// Exists reports whether a project directory exists
func (m *Manager) Exists(projectID string) bool {
	info, err := os.Stat(m.Path(projectID))
	return err == nil && info.IsDir()
}

// Get loads a project's configuration
func (m *Manager) Get(projectID string) (*Info, error) {
	projectPath := m.Path(projectID)
	cfg, err := m.loadConfig(projectPath)
	if err != nil {
		return nil, err
	}
	return &Info{
		ID:        cfg.ID,
		Name:      cfg.Name,
		Path:      projectPath,
		CreatedAt: cfg.CreatedAt,
	}, nil
}

// List returns all projects under the base directory, skipping entries
// without a readable configuration.
func (m *Manager) List() ([]*Info, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	var projects []*Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.Get(entry.Name())
		if err != nil {
			continue
		}
		projects = append(projects, info)
	}
	return projects, nil
}

func (m *Manager) loadConfig(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, MetaDir, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project not initialized at %s", projectPath)
		}
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}

	if cfg.Version == "" {
		cfg.Version = "1.0"
	}
	if cfg.DefaultUser == "" {
		cfg.DefaultUser = "default"
	}
	if cfg.ID == "" {
		cfg.ID = filepath.Base(projectPath)
	}

	return cfg, nil
}

func (m *Manager) saveConfig(projectPath string, cfg *Config) error {
	metaDir := filepath.Join(projectPath, MetaDir)
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal project config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(metaDir, ConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}
	return nil
}
