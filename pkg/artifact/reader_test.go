package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingSource never returns until the context is done
type blockingSource struct{}

func (blockingSource) Fetch(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingSource) Location() string { return "blocking" }

func TestReader_FileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	reader := NewReader(NewFileSource(path), time.Second)
	ctx := context.Background()

	// Nothing published yet
	_, err := reader.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, LoadNotFound, KindOf(err))

	// Partially written
	data := mustEncode(t, linearAB, []string{"a", "b"}, "2026-10-19T08:15:30")
	require.NoError(t, os.WriteFile(path, data[:10], 0o644))
	_, err = reader.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, LoadCorrupt, KindOf(err))

	// Complete
	require.NoError(t, os.WriteFile(path, data, 0o644))
	a, err := reader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, a.FeatureNames)
	assert.Equal(t, path, reader.Location())
}

func TestReader_IOError(t *testing.T) {
	// A directory cannot be read as a file
	reader := NewReader(NewFileSource(t.TempDir()), time.Second)
	_, err := reader.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, LoadIO, KindOf(err))

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "IO")
}

func TestReader_Timeout(t *testing.T) {
	reader := NewReader(blockingSource{}, 20*time.Millisecond)

	start := time.Now()
	_, err := reader.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, LoadIO, KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReader_RedisSource(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	source := NewRedisSource(client, "models:engagement")
	reader := NewReader(source, time.Second)
	ctx := context.Background()
	assert.Equal(t, "redis://models:engagement", reader.Location())

	_, err := reader.Load(ctx)
	assert.Equal(t, LoadNotFound, KindOf(err))

	require.NoError(t, mr.Set("models:engagement", "{not json"))
	_, err = reader.Load(ctx)
	assert.Equal(t, LoadCorrupt, KindOf(err))

	require.NoError(t, source.Publish(ctx, mustEncode(t, linearAB, []string{"a", "b"}, "2026-10-19T08:15:30")))
	a, err := reader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "LinearRegression", a.Kind())

	mr.Close()
	_, err = reader.Load(ctx)
	assert.Equal(t, LoadIO, KindOf(err))
}

func TestNewSource(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	src, err := NewSource("/shared-volume/model.json", nil)
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)
	assert.Equal(t, "/shared-volume/model.json", src.Location())

	src, err = NewSource("file:///shared-volume/model.json", nil)
	require.NoError(t, err)
	assert.Equal(t, "/shared-volume/model.json", src.Location())

	src, err = NewSource("redis://models:engagement", client)
	require.NoError(t, err)
	assert.IsType(t, &RedisSource{}, src)

	_, err = NewSource("redis://models:engagement", nil)
	assert.Error(t, err)

	_, err = NewSource("redis://", client)
	assert.Error(t, err)

	_, err = NewSource("s3://bucket/model.json", nil)
	assert.Error(t, err)
}

func TestKindOf_NonLoadError(t *testing.T) {
	assert.Equal(t, LoadErrorKind(""), KindOf(assert.AnError))
	assert.Equal(t, LoadErrorKind(""), KindOf(nil))
}
