package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir(), "http://cdn.test/storage/")

	require.NoError(t, d.Put(ctx, "a/b.txt", []byte("hi"), "text/plain"))
	assert.True(t, d.Exists(ctx, "a/b.txt"))

	got, err := d.Get(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))

	_, err = d.LastModified(ctx, "a/b.txt")
	assert.NoError(t, err)
	assert.Equal(t, "http://cdn.test/storage/a/b.txt", d.URL("a/b.txt"))

	require.NoError(t, d.Delete(ctx, "a/b.txt"))
	assert.False(t, d.Exists(ctx, "a/b.txt"))
	assert.NoError(t, d.Delete(ctx, "a/b.txt"), "deleting a missing file is fine")
}

func TestLocalDiskRejectsEscape(t *testing.T) {
	d := NewLocalDisk(t.TempDir(), "")
	err := d.Put(context.Background(), "../../etc/passwd", []byte("x"), "")
	assert.Error(t, err)
}

func TestMediaStoreUpload(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir(), "http://cdn.test")
	m := NewMediaStore(d, "adverts")

	url, err := m.Upload(ctx, pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://cdn.test/adverts/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "http://cdn.test/")
	assert.True(t, d.Exists(ctx, key))

	other, err := m.Upload(ctx, pngHeader)
	require.NoError(t, err)
	assert.NotEqual(t, url, other)

	_, err = m.Upload(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyMedia)
}

func TestManagerUnknownDisk(t *testing.T) {
	m := &Manager{disks: map[string]Disk{}, defaultDisk: "local"}
	_, err := m.Default()
	assert.Error(t, err)

	m.Register("local", NewLocalDisk(t.TempDir(), ""))
	d, err := m.Default()
	require.NoError(t, err)
	assert.NotNil(t, d)
}
