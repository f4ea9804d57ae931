package main

import (
	"fmt"
	"io"
	"log"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/shared/infrastructure/config"
	"github.com/saransh1220/libraria/internal/shared/logger"
	"github.com/saransh1220/libraria/pkg/migration"
)

// migrator is the subset of migration.Runner the commands drive
type migrator interface {
	Up() error
	Down() error
	Force(version int) error
	Version() (uint, bool, error)
}

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	flags := flag.NewFlagSet("migrate", flag.ExitOnError)
	path := flags.StringP("path", "p", cfg.Migrations.Path, "directory holding the migration files")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [--path dir] up|down|version|force <version>")
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])

	runner := migration.NewRunner(&migration.Config{
		MigrationsPath: *path,
		DatabaseURL:    cfg.Database.URL(),
		Logger:         zapLogger,
	})

	if err := execute(runner, flags.Args(), os.Stdout); err != nil {
		flags.Usage()
		zapLogger.Fatal("migrate failed", zap.Error(err))
	}
}

func execute(m migrator, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version=%d dirty=%t\n", version, dirty)
		return nil
	case "force":
		if len(args) != 2 {
			return fmt.Errorf("force needs exactly one version")
		}
		var version int
		if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(version)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
