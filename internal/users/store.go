package users

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/pkg/file"
	"github.com/rs/zerolog"
)

const profileSuffix = ".json"

var (
	// ErrUserNotFound is returned when no profile file exists for an id.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidUserID is returned for ids that cannot name a file.
	ErrInvalidUserID = errors.New("invalid user id")
)

// StoreInterface is the profile storage used by the brain node.
type StoreInterface interface {
	List() ([]models.UserProfile, error)
	Load(id string) (models.UserProfile, error)
	Save(id string, profile models.UserProfile) error
	Add(profile models.UserProfile) (string, error)
	NextID() (string, error)
}

// Store keeps one JSON file per user in Dir. Writes are serialized so that id
// allocation and the file it names happen together.
type Store struct {
	Dir    string
	files  file.FileOperations
	Logger zerolog.Logger

	mu sync.Mutex
}

// NewStore creates the users directory if needed.
func NewStore(dir string, files file.FileOperations, logger zerolog.Logger) (*Store, error) {
	if err := files.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create users dir: %w", err)
	}
	return &Store{Dir: dir, files: files, Logger: logger}, nil
}

// List loads every profile, skipping files that fail to parse.
func (s *Store) List() ([]models.UserProfile, error) {
	names, err := s.files.ListFiles(s.Dir, profileSuffix)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	profiles := make([]models.UserProfile, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(name, profileSuffix)
		profile, err := s.Load(id)
		if err != nil {
			s.Logger.Error().Err(err).Str("user_id", id).Msg("Error loading user")
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Load reads the profile with id.
func (s *Store) Load(id string) (models.UserProfile, error) {
	path, err := s.path(id)
	if err != nil {
		return models.UserProfile{}, err
	}

	var profile models.UserProfile
	if err := s.files.ReadJsonFile(path, &profile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.UserProfile{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return models.UserProfile{}, fmt.Errorf("load user %s: %w", id, err)
	}
	if profile.ID == "" {
		profile.ID = id
	}
	return profile, nil
}

// Save writes profile under id, replacing any existing file atomically.
func (s *Store) Save(id string, profile models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(id, profile)
}

func (s *Store) save(id string, profile models.UserProfile) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := s.files.WriteJsonFile(path, profile); err != nil {
		return fmt.Errorf("save user %s: %w", id, err)
	}
	return nil
}

// Add assigns the next id to profile and persists it.
func (s *Store) Add(profile models.UserProfile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.NextID()
	if err != nil {
		return "", err
	}
	profile.ID = id
	if err := s.save(id, profile); err != nil {
		return "", err
	}
	s.Logger.Info().Str("user_id", id).Str("name", profile.Personal.Name).Msg("Added new user")
	return id, nil
}

// NextID returns max(integer ids)+1, or "1" when there are none. Non-numeric file
// names are ignored.
func (s *Store) NextID() (string, error) {
	names, err := s.files.ListFiles(s.Dir, profileSuffix)
	if err != nil {
		return "", err
	}

	highest := 0
	for _, name := range names {
		n, err := strconv.Atoi(strings.TrimSuffix(name, profileSuffix))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1), nil
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, id)
	}
	return filepath.Join(s.Dir, id+profileSuffix), nil
}
