package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-api/internal/core/ports"
)

type fakeStore struct {
	files     []ports.FileInfo
	deleted   []string
	failOn    string
	listError error
}

func (f *fakeStore) Save(context.Context, string, io.Reader) (int64, error) { return 0, nil }
func (f *fakeStore) Open(context.Context, string) (io.ReadCloser, error)    { return nil, nil }
func (f *fakeStore) List(context.Context) ([]ports.FileInfo, error)         { return f.files, f.listError }

func (f *fakeStore) Delete(_ context.Context, name string) error {
	if name == f.failOn {
		return errors.New("permission denied")
	}
	f.deleted = append(f.deleted, name)
	return nil
}

func TestFileSweeper_Sweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		files: []ports.FileInfo{
			{Name: "old.txt", ModifiedAt: now.Add(-48 * time.Hour)},
			{Name: "locked.txt", ModifiedAt: now.Add(-48 * time.Hour)},
			{Name: "fresh.txt", ModifiedAt: now.Add(-time.Hour)},
		},
		failOn: "locked.txt",
	}
	s := NewFileSweeper(store, 24*time.Hour, zerolog.Nop())
	s.now = func() time.Time { return now }

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"old.txt"}, store.deleted)
}

func TestFileSweeper_ListError(t *testing.T) {
	store := &fakeStore{listError: errors.New("bucket unavailable")}
	s := NewFileSweeper(store, time.Hour, zerolog.Nop())

	_, err := s.Sweep(context.Background())
	assert.ErrorContains(t, err, "bucket unavailable")
}

func TestFileSweeper_StartRejectsBadSpec(t *testing.T) {
	s := NewFileSweeper(&fakeStore{}, time.Hour, zerolog.Nop())
	assert.Error(t, s.Start("not a schedule"))

	require.NoError(t, s.Start("@hourly"))
	s.Stop()
}
