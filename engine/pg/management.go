package pg

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5"
)

//go:embed ddl migration sql
var resources embed.FS

// latestSchemaVersion returns the last line of migration/version.txt.
func latestSchemaVersion() (string, error) {
	b, err := resources.ReadFile("migration/version.txt")
	if err != nil {
		return "", fmt.Errorf("failed to read resource migration/version.txt: %v", err)
	}

	lines := strings.Fields(string(b))
	if len(lines) == 0 {
		return "", fmt.Errorf("resource migration/version.txt is empty")
	}
	return lines[len(lines)-1], nil
}

// migrateDatabase executes the embedded DDL, unless table "event" already carries a schema version as comment.
// Tables are created before indices, since fs.WalkDir visits ddl/*.sql before ddl/idx.
func migrateDatabase(tx pgx.Tx, txCtx context.Context, databaseSchema string) error {
	version, err := latestSchemaVersion()
	if err != nil {
		return err
	}

	schemaVersion, err := selectSchemaVersion(tx, txCtx, databaseSchema)
	if err != nil {
		return err
	}
	if schemaVersion != "" {
		return nil
	}

	batch := &pgx.Batch{}
	err = fs.WalkDir(resources, "ddl", func(name string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}

		b, err := resources.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read resource %s: %v", name, err)
		}

		for _, stmt := range strings.Split(string(b), ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				batch.Queue(stmt)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	batch.Queue(fmt.Sprintf("COMMENT ON TABLE event IS %s", quoteString(version)))

	if err := tx.SendBatch(txCtx, batch).Close(); err != nil {
		return fmt.Errorf("failed to migrate database to schema version %s: %v", version, err)
	}
	return nil
}

// selectSchemaVersion returns the comment of table "event" or an empty string, if the table does not exist yet.
func selectSchemaVersion(tx pgx.Tx, txCtx context.Context, databaseSchema string) (string, error) {
	var schemaVersion *string
	err := tx.QueryRow(
		txCtx,
		"SELECT obj_description(to_regclass(quote_ident($1) || '.event'), 'pg_class')",
		databaseSchema,
	).Scan(&schemaVersion)
	if err != nil {
		return "", fmt.Errorf("failed to select schema version: %v", err)
	}

	if schemaVersion == nil {
		return "", nil
	}
	return *schemaVersion, nil
}
