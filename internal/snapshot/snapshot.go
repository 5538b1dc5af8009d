// Package snapshot stores table listings as JSON documents in a filestore
// bucket so a schema's shape can be compared over time.
//
// Keys have the form snapshots/<schema>/<UTC timestamp>.json. The timestamp
// is fixed width, so lexical key order is chronological order.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/schema"
)

const (
	rootPrefix  = "snapshots/"
	extension   = ".json"
	contentType = "application/json"
	stampLayout = "20060102T150405.000000000Z"

	maxSnapshotSize = 64 << 20
)

// Snapshot is one stored table listing.
type Snapshot struct {
	Schema  string               `json:"schema"`
	TakenAt time.Time            `json:"taken_at"`
	Tables  []schema.TableRecord `json:"tables"`
}

// Save writes records as a new snapshot of schemaName and returns the stored
// object. The bucket is created on first use.
func Save(ctx context.Context, store filestore.Store, bucket, schemaName string, records []schema.TableRecord) (*filestore.ObjectInfo, error) {
	return save(ctx, store, bucket, schemaName, records, time.Now())
}

func save(ctx context.Context, store filestore.Store, bucket, schemaName string, records []schema.TableRecord, at time.Time) (*filestore.ObjectInfo, error) {
	if err := validSchema(schemaName); err != nil {
		return nil, err
	}
	if records == nil {
		records = []schema.TableRecord{}
	}

	at = at.UTC()
	body, err := json.Marshal(Snapshot{Schema: schemaName, TakenAt: at, Tables: records})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to encode snapshot", err)
	}

	if err := store.EnsureBucket(ctx, bucket); err != nil {
		return nil, err
	}
	return store.PutObject(ctx, bucket, Key(schemaName, at), bytes.NewReader(body), int64(len(body)), contentType)
}

// Key returns the object key for a snapshot of schemaName taken at t.
func Key(schemaName string, t time.Time) string {
	return Prefix(schemaName) + t.UTC().Format(stampLayout) + extension
}

// Prefix returns the key prefix shared by every snapshot of schemaName.
func Prefix(schemaName string) string {
	return rootPrefix + schemaName + "/"
}

// List returns the snapshots of schemaName, newest first.
func List(ctx context.Context, store filestore.Store, bucket, schemaName string) ([]filestore.ObjectInfo, error) {
	return Since(ctx, store, bucket, schemaName, "", 0)
}

// Since returns up to limit snapshots of schemaName stored after the key
// afterKey, newest first. An empty afterKey starts at the oldest snapshot and
// a limit of 0 means no cap, so successive calls page forward in time.
func Since(ctx context.Context, store filestore.Store, bucket, schemaName, afterKey string, limit int) ([]filestore.ObjectInfo, error) {
	if err := validSchema(schemaName); err != nil {
		return nil, err
	}
	prefix := Prefix(schemaName)
	if afterKey != "" && !strings.HasPrefix(afterKey, prefix) {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "key %q is not a snapshot of schema %q", afterKey, schemaName)
	}
	if limit < 0 {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "limit %d must not be negative", limit)
	}

	objects, err := store.ListObjects(ctx, bucket, filestore.ListOptions{
		Prefix:     prefix,
		Recursive:  true,
		StartAfter: afterKey,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]filestore.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.IsDir || !strings.HasSuffix(obj.Key, extension) {
			continue
		}
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

// Load reads the snapshot stored at key. Objects larger than maxSnapshotSize
// are refused before any byte is decoded.
func Load(ctx context.Context, store filestore.Store, bucket, key string) (*Snapshot, error) {
	obj, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	if info := obj.Info(); info != nil && info.Size > maxSnapshotSize {
		return nil, errs.Newf(errs.ErrKindDecodeFailed, "snapshot %s is %d bytes, limit is %d", key, info.Size, maxSnapshotSize)
	}

	var snap Snapshot
	if err := json.NewDecoder(io.LimitReader(obj, maxSnapshotSize)).Decode(&snap); err != nil {
		return nil, errs.Wrap(errs.ErrKindDecodeFailed, "failed to decode snapshot "+key, err)
	}
	if snap.Tables == nil {
		snap.Tables = []schema.TableRecord{}
	}
	return &snap, nil
}

// Latest loads the newest snapshot of schemaName. It returns a not_found
// error when none has been taken.
func Latest(ctx context.Context, store filestore.Store, bucket, schemaName string) (*Snapshot, error) {
	objects, err := List(ctx, store, bucket, schemaName)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "no snapshots for schema %q", schemaName)
	}
	return Load(ctx, store, bucket, objects[0].Key)
}

func validSchema(name string) error {
	if name == "" {
		return errs.New(errs.ErrKindInvalidInput, "schema name is required")
	}
	if name == "." || name == ".." {
		return errs.Newf(errs.ErrKindInvalidInput, "schema name %q is not a valid key segment", name)
	}
	if strings.ContainsAny(name, "/\\") {
		return errs.Newf(errs.ErrKindInvalidInput, "schema name %q must not contain path separators", name)
	}
	return nil
}
