package migration

import "context"

// Immigration applies a fixed list of migrations to one database.
type Immigration interface {
	// Up applies every pending migration and returns how many ran.
	Up(ctx context.Context) (int, error)

	// Down rolls back at most steps migrations, all of them when steps <= 0.
	Down(ctx context.Context, steps int) (int, error)
}

// Migrate is a migration data to run.
type Migrate interface {
	// ID return unique identifier for each migration. The prefix must be number
	ID(ctx context.Context) string

	// SequenceNumber must be unique and grow with every new migration.
	SequenceNumber(ctx context.Context) int

	// Up return sql migration for sync database
	Up(ctx context.Context) (sql string, err error)

	// Down return sql migration for rollback database
	Down(ctx context.Context) (sql string, err error)
}
