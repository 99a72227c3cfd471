package refdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// VersionTable holds the single metadata row of a reference database.
const VersionTable = "bartlett_compatinfo_versions"

// Version describes the build of a reference database.
type Version struct {
	BuildString  string `db:"build_string"  json:"build.string"`
	BuildDate    string `db:"build_date"    json:"build.date"`
	BuildVersion string `db:"build_version" json:"build.version"`
}

const versionQuery = `SELECT build_string, build_date, build_version FROM ` + VersionTable + ` LIMIT 1`

const tableExistsQuery = `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

// Version reads the build metadata, installing the database first if needed.
// A database without the metadata row yields ErrNotFound.
func (e *Environment) Version(ctx context.Context) (Version, error) {
	db, err := e.Init(ctx, false)
	if err != nil {
		return Version{}, err
	}

	var tables int
	if err := db.GetContext(ctx, &tables, tableExistsQuery, VersionTable); err != nil {
		return Version{}, fmt.Errorf("refdb: inspect schema: %w", err)
	}

	if tables == 0 {
		return Version{}, fmt.Errorf("%w: table %s", ErrNotFound, VersionTable)
	}

	var v Version

	err = db.GetContext(ctx, &v, versionQuery)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("%w: no row in %s", ErrNotFound, VersionTable)
	}

	if err != nil {
		return Version{}, fmt.Errorf("refdb: read version: %w", err)
	}

	return v, nil
}
