package snapshot

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory filestore.Store.
type memStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
	ensured int
	putErr  error
	sizes   map[string]int64
}

func newMemStore() *memStore {
	return &memStore{buckets: make(map[string]map[string][]byte), sizes: make(map[string]int64)}
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func (m *memStore) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured++
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string][]byte)
	}
	return nil
}

func (m *memStore) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*filestore.ObjectInfo, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such bucket")
	}
	b[key] = body
	return &filestore.ObjectInfo{Key: key, Size: size, ContentType: contentType}, nil
}

func (m *memStore) ListObjects(_ context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]filestore.ObjectInfo, 0)
	for key, body := range m.buckets[bucket] {
		if strings.HasPrefix(key, opts.Prefix) && key > opts.StartAfter {
			out = append(out, filestore.ObjectInfo{Key: key, Size: int64(len(body))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memStore) GetObject(_ context.Context, bucket, key string) (filestore.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.buckets[bucket][key]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key")
	}
	size := int64(len(body))
	if override, ok := m.sizes[key]; ok {
		size = override
	}
	return &memObject{Reader: bytes.NewReader(body), info: &filestore.ObjectInfo{Key: key, Size: size}}, nil
}

func (m *memStore) PresignGetURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "http://store.test/" + bucket + "/" + key, nil
}

func (m *memStore) put(bucket, key, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string][]byte)
	}
	m.buckets[bucket][key] = []byte(body)
}

type memObject struct {
	*bytes.Reader
	info *filestore.ObjectInfo
}

func (o *memObject) Close() error                { return nil }
func (o *memObject) Info() *filestore.ObjectInfo { return o.info }

var _ filestore.Store = (*memStore)(nil)

var shopTables = []schema.TableRecord{
	{Name: "customers", Engine: "InnoDB", AutoIncrement: 12, Collation: "utf8mb4_0900_ai_ci"},
	{Name: "orders", Engine: "InnoDB", AutoIncrement: 57, Collation: "utf8mb4_0900_ai_ci", Comment: "order headers"},
}

func TestKey(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 8, time.FixedZone("CET", 3600))
	assert.Equal(t, "snapshots/shop/20260304T040607.000000008Z.json", Key("shop", at))
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	info, err := save(ctx, store, "snaps", "shop", shopTables, at)
	require.NoError(t, err)
	assert.Equal(t, Key("shop", at), info.Key)
	assert.Equal(t, "application/json", info.ContentType)
	assert.Equal(t, 1, store.ensured)

	snap, err := Load(ctx, store, "snaps", info.Key)
	require.NoError(t, err)
	assert.Equal(t, "shop", snap.Schema)
	assert.True(t, at.Equal(snap.TakenAt))
	assert.Equal(t, shopTables, snap.Tables)
}

func TestSave_NilRecordsStoresEmptyList(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	info, err := Save(ctx, store, "snaps", "empty", nil)
	require.NoError(t, err)

	snap, err := Load(ctx, store, "snaps", info.Key)
	require.NoError(t, err)
	assert.NotNil(t, snap.Tables)
	assert.Empty(t, snap.Tables)
}

func TestSave_RejectsBadSchemaNames(t *testing.T) {
	store := newMemStore()
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "../etc"} {
		_, err := Save(context.Background(), store, "snaps", name, shopTables)
		require.Error(t, err, name)
		assert.True(t, errs.IsInvalidInput(err), name)
	}
	assert.Zero(t, store.ensured)
}

func TestSave_PropagatesStoreError(t *testing.T) {
	store := newMemStore()
	store.putErr = errs.New(errs.ErrKindPermissionDenied, "denied")

	_, err := Save(context.Background(), store, "snaps", "shop", shopTables)
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for _, d := range []time.Duration{0, 2 * time.Hour, time.Hour} {
		_, err := save(ctx, store, "snaps", "shop", shopTables, base.Add(d))
		require.NoError(t, err)
	}
	_, err := save(ctx, store, "snaps", "shopfloor", shopTables, base)
	require.NoError(t, err)
	store.put("snaps", "snapshots/shop/notes.txt", "ignored")

	objects, err := List(ctx, store, "snaps", "shop")
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, Key("shop", base.Add(2*time.Hour)), objects[0].Key)
	assert.Equal(t, Key("shop", base.Add(time.Hour)), objects[1].Key)
	assert.Equal(t, Key("shop", base), objects[2].Key)
}

func TestList_Empty(t *testing.T) {
	objects, err := List(context.Background(), newMemStore(), "snaps", "shop")
	require.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Empty(t, objects)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put("snaps", "snapshots/shop/bad.json", "{not json")

	_, err := Load(ctx, store, "snaps", "snapshots/shop/missing.json")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	_, err = Load(ctx, store, "snaps", "snapshots/shop/bad.json")
	require.Error(t, err)
	assert.True(t, errs.IsDecodeFailed(err))
}

func TestLatest(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	_, err := Latest(ctx, store, "snaps", "shop")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err = save(ctx, store, "snaps", "shop", shopTables[:1], base)
	require.NoError(t, err)
	_, err = save(ctx, store, "snaps", "shop", shopTables, base.Add(time.Minute))
	require.NoError(t, err)

	snap, err := Latest(ctx, store, "snaps", "shop")
	require.NoError(t, err)
	assert.Len(t, snap.Tables, 2)
}

func TestSince_PagesForward(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := save(ctx, store, "snaps", "shop", shopTables, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	first, err := Since(ctx, store, "snaps", "shop", "", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, Key("shop", base.Add(time.Hour)), first[0].Key)
	assert.Equal(t, Key("shop", base), first[1].Key)

	next, err := Since(ctx, store, "snaps", "shop", first[0].Key, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, Key("shop", base.Add(3*time.Hour)), next[0].Key)
	assert.Equal(t, Key("shop", base.Add(2*time.Hour)), next[1].Key)

	rest, err := Since(ctx, store, "snaps", "shop", next[0].Key, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, Key("shop", base.Add(4*time.Hour)), rest[0].Key)
}

func TestSince_RejectsForeignKeyAndNegativeLimit(t *testing.T) {
	store := newMemStore()

	_, err := Since(context.Background(), store, "snaps", "shop", "snapshots/other/x.json", 1)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = Since(context.Background(), store, "snaps", "shop", "", -1)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestLoad_RefusesOversizedObject(t *testing.T) {
	store := newMemStore()
	key := "snapshots/shop/20260101T000000.000000000Z.json"
	store.put("snaps", key, `{"schema":"shop","tables":[]}`)
	store.sizes[key] = maxSnapshotSize + 1

	_, err := Load(context.Background(), store, "snaps", key)
	require.Error(t, err)
	assert.True(t, errs.IsDecodeFailed(err))
	assert.Contains(t, err.Error(), "limit")
}
