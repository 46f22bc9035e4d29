// Package catalog persists one row per successful point-cloud load so the
// viewer can list and re-open previously ingested files with their header
// metadata and decode statistics.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/lasview/internal/monitoring"
)

// Catalog wraps the sqlite database holding load history.
type Catalog struct {
	*sql.DB
}

// Open opens (creating if necessary) the catalog database at path and runs
// any pending schema migrations.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	c := &Catalog{db}
	if err := c.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	monitoring.Logf("catalog: opened %s", path)
	return c, nil
}

// LoadRecord is one successful load: the file's identity, its header
// summary, and what the decode pass produced.
type LoadRecord struct {
	LoadID       uuid.UUID
	SourceName   string
	LoadedAt     time.Time
	VersionMajor int
	VersionMinor int
	RecordFormat int
	RecordLength int
	PointCount   int64 // effective count declared by the header
	DecodedCount int64 // points the decode pass actually produced
	DecodeStride int
	MinZ, MaxZ   float64
	HasColor     bool
	DecodeMillis int64
}

// InsertLoad persists a load record and returns its rowid.
func (c *Catalog) InsertLoad(rec *LoadRecord) (int64, error) {
	if rec == nil {
		return 0, nil
	}
	stmt := `INSERT INTO loads (load_id, source_name, loaded_unix_nanos, version_major, version_minor,
				record_format, record_length, point_count, decoded_count, decode_stride,
				min_z, max_z, has_color, decode_millis)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := c.Exec(stmt, rec.LoadID.String(), rec.SourceName, rec.LoadedAt.UnixNano(),
		rec.VersionMajor, rec.VersionMinor, rec.RecordFormat, rec.RecordLength,
		rec.PointCount, rec.DecodedCount, rec.DecodeStride,
		rec.MinZ, rec.MaxZ, rec.HasColor, rec.DecodeMillis)
	if err != nil {
		return 0, fmt.Errorf("failed to insert load record: %w", err)
	}
	return res.LastInsertId()
}

// RecentLoads returns up to limit load records, newest first.
func (c *Catalog) RecentLoads(limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.Query(`SELECT load_id, source_name, loaded_unix_nanos, version_major, version_minor,
				record_format, record_length, point_count, decoded_count, decode_stride,
				min_z, max_z, has_color, decode_millis
			 FROM loads ORDER BY loaded_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query loads: %w", err)
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		var rec LoadRecord
		var id string
		var nanos int64
		if err := rows.Scan(&id, &rec.SourceName, &nanos, &rec.VersionMajor, &rec.VersionMinor,
			&rec.RecordFormat, &rec.RecordLength, &rec.PointCount, &rec.DecodedCount, &rec.DecodeStride,
			&rec.MinZ, &rec.MaxZ, &rec.HasColor, &rec.DecodeMillis); err != nil {
			return nil, fmt.Errorf("failed to scan load record: %w", err)
		}
		rec.LoadID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt load_id %q: %w", id, err)
		}
		rec.LoadedAt = time.Unix(0, nanos)
		out = append(out, rec)
	}
	return out, rows.Err()
}
