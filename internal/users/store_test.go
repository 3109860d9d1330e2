package users

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/benmeehan/zima/internal/models"
	"github.com/benmeehan/zima/pkg/file"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "users"), file.NewFileService(), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestNextID(t *testing.T) {
	s := newStore(t)

	id, err := s.NextID()
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	require.NoError(t, s.Save("1", models.UserProfile{Personal: models.PersonalInfo{Name: "Ada"}}))
	require.NoError(t, s.Save("3", models.UserProfile{Personal: models.PersonalInfo{Name: "Lin"}}))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "guest.json"), []byte(`{}`), 0644))

	id, err = s.NextID()
	require.NoError(t, err)
	assert.Equal(t, "4", id)
}

func TestAddAndLoad(t *testing.T) {
	s := newStore(t)

	id, err := s.Add(models.UserProfile{
		Personal:    models.PersonalInfo{Name: "Grace", Age: 71},
		Medications: []models.Medication{{Name: "Paracetamol", Dosage: "500mg", Slot: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	profile, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "1", profile.ID)
	assert.Equal(t, "Grace", profile.Personal.Name)
	require.Len(t, profile.Medications, 1)
	assert.Equal(t, 1, profile.Medications[0].Slot)

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLoad_Errors(t *testing.T) {
	s := newStore(t)

	_, err := s.Load("42")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.Load("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestAdd_Concurrent(t *testing.T) {
	s := newStore(t)

	const adds = 100
	ids := make(chan string, adds)
	var wg sync.WaitGroup
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Add(models.UserProfile{Personal: models.PersonalInfo{Name: "Patient"}})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	distinct := map[string]struct{}{}
	for id := range ids {
		distinct[id] = struct{}{}
	}
	assert.Len(t, distinct, adds)

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, adds)
}
