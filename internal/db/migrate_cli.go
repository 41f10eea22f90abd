package db

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// ErrUnknownMigrateAction is returned for an unrecognised migrate subcommand.
var ErrUnknownMigrateAction = errors.New("unknown migrate action")

// RunMigrateCommand handles the 'migrate' subcommand against the database at
// dbPath using the embedded migrations.
func RunMigrateCommand(w io.Writer, args []string, dbPath string) error {
	if len(args) < 1 {
		PrintMigrateHelp(w)
		return fmt.Errorf("%w: none given", ErrUnknownMigrateAction)
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(w)
		return nil
	}

	// Open without migrating; the subcommand manages the schema.
	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	migrations := Migrations()
	switch action {
	case "up":
		if err := database.MigrateUp(migrations); err != nil {
			return err
		}
	case "down":
		if err := database.MigrateDown(migrations); err != nil {
			return err
		}
	case "status":
	default:
		PrintMigrateHelp(w)
		return fmt.Errorf("%w: %s", ErrUnknownMigrateAction, action)
	}
	return printMigrateStatus(w, database, migrations)
}

func printMigrateStatus(w io.Writer, database *DB, migrations fs.FS) error {
	version, dirty, err := database.MigrateVersion(migrations)
	if err != nil {
		return fmt.Errorf("get migration status: %w", err)
	}
	latest, err := LatestMigrationVersion(migrations)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Current version: %d\n", version)
	fmt.Fprintf(w, "Latest available: %d\n", latest)
	fmt.Fprintf(w, "Dirty: %v\n", dirty)
	switch {
	case dirty:
		fmt.Fprintln(w, "WARNING: a migration failed mid-execution; inspect the database before indexing.")
	case version < latest:
		fmt.Fprintf(w, "Database is %d version(s) behind. Run 'bimrl-index migrate up' to update.\n", latest-version)
	}
	return nil
}

// LatestMigrationVersion returns the highest version present in migrations.
func LatestMigrationVersion(migrations fs.FS) (uint, error) {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return 0, fmt.Errorf("read migrations: %w", err)
	}
	var latest uint
	for _, e := range entries {
		var v uint
		if _, err := fmt.Sscanf(e.Name(), "%d_", &v); err != nil {
			continue
		}
		latest = max(latest, v)
	}
	return latest, nil
}

// PrintMigrateHelp displays the help message for the migrate command.
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprintln(w, "Database Migration Commands")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: bimrl-index [-db <path>] migrate <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  up        Apply all pending migrations")
	fmt.Fprintln(w, "  down      Rollback one migration")
	fmt.Fprintln(w, "  status    Show current migration status and version")
	fmt.Fprintln(w, "  help      Show this help message")
}
