package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(filepath.Join(t.TempDir(), "data", "products.json"))

	want := []Product{
		{ID: "2", Name: "B", Description: "second", Price: 2.5, Category: "X", PictureURL: "u2"},
		{ID: "1", Name: "A", Description: "first", Price: 1, Category: "Y", PictureURL: "u1", Status: StatusPending},
		{ID: "abc", Name: "weird id"},
	}

	require.NoError(t, fs.Save(ctx, want))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_PrettyPrintedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(context.Background(), []Product{{ID: "1", Name: "A"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {\n    \"id\": \"1\""), string(raw))
}

func TestFileStore_SaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(context.Background(), nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	got, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "products.json"))

	for i := 0; i < 3; i++ {
		require.NoError(t, fs.Save(context.Background(), []Product{{ID: "1"}}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "products.json", entries[0].Name())
}

func TestLoadStore_SeedsAndSavesWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	fs := NewFileStore(path)

	st := LoadStore(context.Background(), fs, zap.NewNop())
	require.Equal(t, 2, st.Len())

	saved, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, st.List(), saved)
}

func TestLoadStore_UsesPersistedRecords(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "products.json"))
	want := []Product{{ID: "7", Name: "kept"}}
	require.NoError(t, fs.Save(context.Background(), want))

	st := LoadStore(context.Background(), fs, zap.NewNop())
	assert.Equal(t, want, st.List())
}

type failingPersister struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingPersister) Load(context.Context) ([]Product, error) { return nil, f.loadErr }
func (f *failingPersister) Save(context.Context, []Product) error {
	f.saves++
	return f.saveErr
}
func (f *failingPersister) Ping(context.Context) error  { return nil }
func (f *failingPersister) Describe() (string, string) { return "fake", "" }

func TestLoadStore_LoadFailureFallsBackToSeed(t *testing.T) {
	p := &failingPersister{loadErr: errors.New("disk on fire"), saveErr: errors.New("still on fire")}

	st := LoadStore(context.Background(), p, zap.NewNop())

	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 1, p.saves)
}
