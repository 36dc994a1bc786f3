package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/mission-site/internal/storage"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("content")
	uri, err := store.PutObject(context.Background(), "jobs/a/index.html", storage.ContentTypeHTML, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "memory://jobs/a/index.html", uri)

	payload[0] = 'C'
	obj, ok := store.Get("jobs/a/index.html")
	require.True(t, ok)
	assert.Equal(t, "content", string(obj.Data))
	assert.Equal(t, storage.ContentTypeHTML, obj.ContentType)

	obj.Data[0] = 'X'
	again, _ := store.Get("jobs/a/index.html")
	assert.Equal(t, "content", string(again.Data))
}

func TestBlobStorePathsAndDirs(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureDir(ctx, "jobs"))
	for _, p := range []string{"sitemap.xml", "jobs/b/index.html", "robots.txt"} {
		_, err := store.PutObject(ctx, p, storage.ContentTypeText, bytes.NewReader(nil))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"jobs/b/index.html", "robots.txt", "sitemap.xml"}, store.Paths())
	assert.True(t, store.HasDir("jobs"))
	assert.False(t, store.HasDir("other"))

	_, err := store.PutObject(ctx, "../x", storage.ContentTypeText, bytes.NewReader(nil))
	assert.ErrorIs(t, err, storage.ErrPathTraversal)
}
