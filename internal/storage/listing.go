package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/nestvault/nestvault/internal/backup"
)

// ListBackups returns every remote artifact for the database, newest first.
// Objects whose keys do not follow the artifact naming convention are
// foreign and ignored; their timestamps come from parsing the key, not from
// backend metadata.
func ListBackups(ctx context.Context, store Adapter, database string) ([]backup.RemoteArtifact, error) {
	objects, err := store.List(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("list backups for %s: %w", database, err)
	}

	records := make([]backup.RemoteArtifact, 0, len(objects))
	for _, obj := range objects {
		db, at, ok := backup.ParseKey(obj.Key)
		if !ok || db != database {
			continue
		}
		records = append(records, backup.RemoteArtifact{
			Key:       obj.Key,
			Database:  db,
			CreatedAt: at,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
