package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration script SQL embebido, identificado por su nombre de archivo.
type Migration struct {
	Name string
	SQL  string
}

// Migrations devuelve los scripts embebidos en orden lexicográfico (001_, 002_, ...).
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	out := make([]Migration, 0, len(names))
	for _, name := range names {
		raw, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, Migration{Name: name, SQL: string(raw)})
	}
	return out, nil
}

// Migrate aplica todas las migraciones. Los scripts son idempotentes (IF NOT EXISTS).
func Migrate(ctx context.Context, q Querier, onApplied func(name string)) error {
	migrations, err := Migrations()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := q.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
		if onApplied != nil {
			onApplied(m.Name)
		}
	}
	return nil
}
