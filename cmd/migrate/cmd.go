package migrate

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/fcmpush/assets/migrations/pgsql_tokenrepo"
	"github.com/yusufsyaifudin/fcmpush/config"
	"github.com/yusufsyaifudin/fcmpush/extd"
	"github.com/yusufsyaifudin/fcmpush/pkg/migration"
	"github.com/yusufsyaifudin/fcmpush/pkg/multidb"
	"github.com/yusufsyaifudin/ylog"
)

const (
	ExitSuccess = 0
	ExitErr     = 1

	migrationTable = "migration_records_token_repo"
)

const (
	DirectionUp    = "up"
	DirectionDown  = "down"
	DirectionPrint = "print"
)

// Cmd migrates the database used by tokenRepo. Only the postgres driver has migrations.
type Cmd struct {
	flags      *flag.FlagSet
	direction  string
	configFile string
	steps      int
	out        io.Writer
}

func NewCmd(direction string) func() (cli.Command, error) {
	return func() (cli.Command, error) {
		switch direction {
		case DirectionUp, DirectionDown, DirectionPrint:
		default:
			return nil, fmt.Errorf("unknown migration direction: '%s'", direction)
		}

		cmd := &Cmd{
			direction: direction,
			out:       os.Stdout,
		}

		cmd.flags = flag.NewFlagSet("migrate "+direction, flag.ContinueOnError)
		cmd.flags.StringVar(&cmd.configFile, "config", "config.yml", "Config file to load")
		cmd.flags.StringVar(&cmd.configFile, "c", "config.yml", "Alias for config file to load")
		if direction == DirectionDown {
			cmd.flags.IntVar(&cmd.steps, "steps", 0, "Number of migrations to roll back, 0 rolls back all")
		}

		return cmd, nil
	}
}

var _ cli.Command = (*Cmd)(nil)

func (c *Cmd) Help() string {
	usage := fmt.Sprintf("fcmpush migrate %s [-c config.yml]", c.direction)
	if c.direction == DirectionDown {
		usage += " [-steps N]"
	}

	return fmt.Sprintf(`Usage: %s

  %s`, usage, c.Synopsis())
}

func (c *Cmd) Synopsis() string {
	switch c.direction {
	case DirectionUp:
		return "Sync up all device token migrations."
	case DirectionDown:
		return "Roll back device token migrations."
	}

	return "Print all device token migrations."
}

func (c *Cmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		log.Printf("error parsing config argument: %s", err)
		return ExitErr
	}

	ctx, err := extd.SetupLog(context.Background())
	if err != nil {
		log.Printf("error setup log: %s", err)
		return ExitErr
	}

	if c.direction == DirectionPrint {
		if err = Print(ctx, c.out, pgsql_tokenrepo.Migrations()); err != nil {
			ylog.Error(ctx, "print migration failed", ylog.KV("error", err))
			return ExitErr
		}

		return ExitSuccess
	}

	cfg, err := config.Load(c.configFile)
	if err != nil {
		ylog.Error(ctx, "error load config", ylog.KV("error", err))
		return ExitErr
	}

	if err = c.migrate(ctx, cfg); err != nil {
		ylog.Error(ctx, "migration failed", ylog.KV("error", err))
		return ExitErr
	}

	return ExitSuccess
}

func (c *Cmd) migrate(ctx context.Context, cfg config.Config) (err error) {
	if cfg.TokenRepo.Driver != string(multidb.Postgres) {
		ylog.Info(ctx, fmt.Sprintf("token repo driver %s does not need to migrate", cfg.TokenRepo.Driver))
		return nil
	}

	dbCfg := cfg.DatabaseResources[cfg.TokenRepo.DBLabel]
	dbConn, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{
		Config: multidb.DatabaseResources{
			cfg.TokenRepo.DBLabel: {
				Driver:   multidb.Postgres,
				Postgres: multidb.GoSqlDb(dbCfg.Postgres),
			},
		},
	})
	if err != nil {
		return err
	}

	defer func() {
		if _err := dbConn.Close(); _err != nil {
			ylog.Error(ctx, "error close db", ylog.KV("error", _err))
		}
	}()

	sqlConn, err := dbConn.GetSqlx(multidb.Postgres, cfg.TokenRepo.DBLabel)
	if err != nil {
		return err
	}

	if err = sqlConn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db error: %w", err)
	}

	mig, err := migration.NewSQLImmigration(ctx, migration.SQLImmigrationConfig{
		Dialect:        multidb.Postgres.String(),
		DB:             sqlConn.DB,
		MigrationTable: migrationTable,
		Migrations:     pgsql_tokenrepo.Migrations(),
	})
	if err != nil {
		return fmt.Errorf("prepare immigration error: %w", err)
	}

	ylog.Info(ctx, fmt.Sprintf("trying to migrate %s", c.direction))
	var applied int
	switch c.direction {
	case DirectionUp:
		applied, err = mig.Up(ctx)
	case DirectionDown:
		applied, err = mig.Down(ctx, c.steps)
	}

	if err != nil {
		return fmt.Errorf("query db error: %w", err)
	}

	ylog.Info(ctx, fmt.Sprintf("success migrate %s, %d migrations applied", c.direction, applied))
	return nil
}

// Print writes the migrations in the sql-migrate file format.
func Print(ctx context.Context, w io.Writer, migrations []migration.Migrate) error {
	for _, mig := range migrations {
		up, err := mig.Up(ctx)
		if err != nil {
			return fmt.Errorf("%s up: %w", mig.ID(ctx), err)
		}

		down, err := mig.Down(ctx)
		if err != nil {
			return fmt.Errorf("%s down: %w", mig.ID(ctx), err)
		}

		_, err = fmt.Fprintf(w, "-- %s\n\n-- +migrate Up\n%s\n\n-- +migrate Down\n%s\n\n", mig.ID(ctx), up, down)
		if err != nil {
			return err
		}
	}

	return nil
}
