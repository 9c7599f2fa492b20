package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

// Seed is the initial content of the mock gateway.
type Seed struct {
	Users    []SeedUser `yaml:"users"`
	Files    []SeedFile `yaml:"files"`
	Services struct {
		Config map[string]any         `yaml:"config"`
		Status []domain.ServiceStatus `yaml:"status"`
	} `yaml:"services"`
}

type SeedUser struct {
	Username        string   `yaml:"username"`
	Password        string   `yaml:"password"`
	Name            string   `yaml:"name"`
	Email           string   `yaml:"email"`
	ConnectionGroup string   `yaml:"connection_group"`
	Permissions     []string `yaml:"permissions"` // empty grants all permissions
	Suspended       bool     `yaml:"suspended"`
}

type SeedFile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Owner       string   `yaml:"owner"`
	Numbers     []string `yaml:"numbers"`
}

// LoadSeed reads the seed file. Without a file, the configured admin user is the only content.
func LoadSeed(cfg *config.MockConfig) (*Seed, error) {
	seed := &Seed{}
	if cfg.SeedFile == "" {
		seed.Users = []SeedUser{{Username: cfg.AdminUser, Password: cfg.AdminPassword, Name: "Administrator"}}
		seed.Services.Status = []domain.ServiceStatus{
			{Program: "smpp-worker", Status: "RUNNING", Ok: true},
			{Program: "http-api", Status: "RUNNING", Ok: true},
		}
		return seed, nil
	}

	data, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return seed, nil
}

// ServiceConfig returns the seeded configuration document as JSON.
func (s *Seed) ServiceConfig() (domain.ServiceConfig, error) {
	if s.Services.Config == nil {
		return domain.ServiceConfig(`{}`), nil
	}
	raw, err := json.Marshal(s.Services.Config)
	if err != nil {
		return nil, fmt.Errorf("seeded service config is not JSON compatible: %w", err)
	}
	return domain.ServiceConfig(raw), nil
}

// Apply stores the seeded users and files. Users that already exist are left untouched.
func (s *Seed) Apply(ctx context.Context, users UserDatabaseRepo, files FileDatabaseRepo) error {
	now := time.Now().Unix()

	for _, su := range s.Users {
		perms := make([]domain.Permission, 0, len(su.Permissions))
		for _, p := range su.Permissions {
			perms = append(perms, domain.Permission(strings.TrimSpace(p)))
		}
		if len(perms) == 0 {
			perms = domain.AllPermissions()
		}
		if err := checkPermissions(perms); err != nil {
			return fmt.Errorf("invalid seed user %s: %w", su.Username, err)
		}

		user := &domain.User{
			Username:        su.Username,
			Password:        domain.PrivateString(su.Password),
			Name:            su.Name,
			Email:           su.Email,
			ConnectionGroup: su.ConnectionGroup,
			Permissions:     perms,
			RegisteredAt:    now,
			Suspended:       su.Suspended,
		}
		if err := user.HashPassword(); err != nil {
			return fmt.Errorf("failed to hash password of seed user %s: %w", su.Username, err)
		}

		err := users.CreateUser(ctx, user)
		if errors.Is(err, domain.ErrNotUnique) {
			slog.Debug("seed user already exists", "username", su.Username)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create seed user %s: %w", su.Username, err)
		}
	}

	for _, sf := range s.Files {
		numbers, err := ParseNumbers([]byte(strings.Join(sf.Numbers, "\n")))
		if err != nil {
			return fmt.Errorf("invalid seed file %s: %w", sf.Name, err)
		}
		file := &domain.NumFile{
			ID:          uuid.NewString(),
			Name:        sf.Name,
			Description: sf.Description,
			Username:    sf.Owner,
			SubmittedAt: now,
			Type:        domain.FileTypeTXT,
			Rows:        len(numbers),
			Numbers:     numbers,
		}
		if err := files.SaveFile(ctx, file); err != nil {
			return fmt.Errorf("failed to store seed file %s: %w", sf.Name, err)
		}
	}

	slog.Info("applied seed", "users", len(s.Users), "files", len(s.Files))
	return nil
}
