package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/canopy/pkg/model"
)

// SQLiteSource introspects a SQLite database lazily: the root is the
// database itself, one level of object-type folders below it, the objects
// below those, and table/view columns at the bottom. Every level is fetched
// on first expansion, so opening a huge database stays cheap.
//
// Node ids are stable paths into the catalog:
//
//	db
//	db/tables
//	db/tables/orders
//	db/tables/orders/id
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens a SQLite database for read-only introspection.
func OpenSQLite(path string) (*SQLiteSource, error) {
	// Read-only mode plus pragmas tuned for catalog reads.
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteSource{db: db, path: path}, nil
}

// Roots returns the single database container, unloaded.
func (s *SQLiteSource) Roots(ctx context.Context) ([]*model.Node, error) {
	// Probe the connection so a bogus file fails here, not on first expand.
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database %s: %w", s.path, err)
	}
	name := filepath.Base(s.path)
	return []*model.Node{model.NewContainer("db", name, model.KindDatabase)}, nil
}

// FetchChildren resolves one level of the catalog addressed by the parent's
// path id.
func (s *SQLiteSource) FetchChildren(ctx context.Context, parentID string) ([]*model.Node, error) {
	parts := strings.Split(parentID, "/")
	switch {
	case parentID == "db":
		return s.typeFolders(ctx)
	case len(parts) == 2: // db/tables, db/views, db/indexes
		return s.objects(ctx, parts[1])
	case len(parts) == 3 && (parts[1] == "tables" || parts[1] == "views"):
		return s.columns(ctx, parentID, parts[2])
	default:
		return nil, fmt.Errorf("unknown catalog path %q", parentID)
	}
}

// typeFolders lists the object-type folders that actually contain objects.
func (s *SQLiteSource) typeFolders(ctx context.Context) ([]*model.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM sqlite_master
		 WHERE name NOT LIKE 'sqlite_%' GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []*model.Node
	for _, typ := range []string{"table", "view", "index"} {
		if counts[typ] == 0 {
			continue
		}
		id := "db/" + typ + "s"
		out = append(out, model.NewContainer(id, typ+"s", model.KindFolder))
	}
	return out, nil
}

// objects lists the named objects of one type folder.
func (s *SQLiteSource) objects(ctx context.Context, folder string) ([]*model.Node, error) {
	typ := strings.TrimSuffix(folder, "s")
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master
		 WHERE type = ? AND name NOT LIKE 'sqlite_%' ORDER BY name`, typ)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", folder, err)
	}
	defer rows.Close()

	var out []*model.Node
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		id := "db/" + folder + "/" + name
		switch typ {
		case "table":
			out = append(out, model.NewContainer(id, name, model.KindTable))
		case "view":
			out = append(out, model.NewContainer(id, name, model.KindView))
		default:
			out = append(out, model.NewLeaf(id, name, model.KindFunction))
		}
	}
	return out, rows.Err()
}

// columns lists a table's or view's columns as leaves.
func (s *SQLiteSource) columns(ctx context.Context, parentID, object string) ([]*model.Node, error) {
	// PRAGMA table_info does not support placeholders; quote the identifier.
	quoted := `"` + strings.ReplaceAll(object, `"`, `""`) + `"`
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+quoted+")")
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", object, err)
	}
	defer rows.Close()

	var out []*model.Node
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		label := name
		if ctype != "" {
			label = fmt.Sprintf("%s (%s)", name, strings.ToLower(ctype))
		}
		out = append(out, model.NewLeaf(parentID+"/"+name, label, model.KindColumn))
	}
	return out, rows.Err()
}

// Type identifies the backend.
func (s *SQLiteSource) Type() SourceType { return SourceTypeSQLite }

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
