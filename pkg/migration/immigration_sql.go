package migration

import (
	"context"
	"database/sql"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

type SQLImmigrationConfig struct {
	Dialect        string    `validate:"required,oneof=postgres"`
	DB             *sql.DB   `validate:"required"`
	MigrationTable string    `validate:"required"`
	Migrations     []Migrate `validate:"required,min=1"`
}

type SQLImmigration struct {
	config SQLImmigrationConfig
	set    migrate.MigrationSet
	source migrate.MigrationSource
}

var _ Immigration = (*SQLImmigration)(nil)

func NewSQLImmigration(ctx context.Context, config SQLImmigrationConfig) (*SQLImmigration, error) {
	err := validator.Validate(config)
	if err != nil {
		return nil, err
	}

	source, err := MemorySource(ctx, config.Migrations)
	if err != nil {
		return nil, err
	}

	return &SQLImmigration{
		config: config,
		set:    migrate.MigrationSet{TableName: config.MigrationTable},
		source: source,
	}, nil
}

func (p *SQLImmigration) Up(ctx context.Context) (int, error) {
	return p.exec(ctx, migrate.Up, 0)
}

func (p *SQLImmigration) Down(ctx context.Context, steps int) (int, error) {
	if steps < 0 {
		steps = 0
	}

	return p.exec(ctx, migrate.Down, steps)
}

func (p *SQLImmigration) exec(ctx context.Context, direction migrate.MigrationDirection, steps int) (int, error) {
	n, err := p.set.ExecMax(p.config.DB, p.config.Dialect, p.source, direction, steps)
	if err != nil {
		return n, fmt.Errorf("migration table %s: %w", p.config.MigrationTable, err)
	}

	ylog.Info(ctx, "migration executed",
		ylog.KV("table", p.config.MigrationTable),
		ylog.KV("applied", n),
	)

	return n, nil
}

// MemorySource converts the migrations into a sql-migrate source.
// Duplicate ids and sequence numbers are rejected.
func MemorySource(ctx context.Context, migrations []Migrate) (*migrate.MemoryMigrationSource, error) {
	seenID := make(map[string]struct{}, len(migrations))
	seenSeq := make(map[int]string, len(migrations))
	mig := make([]*migrate.Migration, 0, len(migrations))
	for _, m := range migrations {
		id := m.ID(ctx)
		if _, exist := seenID[id]; exist {
			return nil, fmt.Errorf("duplicate migration id %s", id)
		}

		seq := m.SequenceNumber(ctx)
		if other, exist := seenSeq[seq]; exist {
			return nil, fmt.Errorf("migration %s reuses sequence number %d of %s", id, seq, other)
		}

		seenID[id] = struct{}{}
		seenSeq[seq] = id

		sqlUp, err := m.Up(ctx)
		if err != nil {
			return nil, fmt.Errorf("migration %s up: %w", id, err)
		}

		sqlDown, err := m.Down(ctx)
		if err != nil {
			return nil, fmt.Errorf("migration %s down: %w", id, err)
		}

		mig = append(mig, &migrate.Migration{
			Id:   id,
			Up:   []string{sqlUp},
			Down: []string{sqlDown},
		})
	}

	return &migrate.MemoryMigrationSource{
		Migrations: mig,
	}, nil
}
