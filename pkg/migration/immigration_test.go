package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/migration"
)

type fakeMigration struct {
	id  string
	seq int
}

func (f fakeMigration) ID(ctx context.Context) string        { return f.id }
func (f fakeMigration) SequenceNumber(ctx context.Context) int { return f.seq }
func (f fakeMigration) Up(ctx context.Context) (string, error) {
	return "CREATE TABLE " + f.id + " (id INT);", nil
}
func (f fakeMigration) Down(ctx context.Context) (string, error) {
	return "DROP TABLE " + f.id + ";", nil
}

func TestMemorySource(t *testing.T) {
	source, err := migration.MemorySource(context.Background(), []migration.Migrate{
		fakeMigration{id: "1_a", seq: 1},
		fakeMigration{id: "2_b", seq: 2},
	})
	require.NoError(t, err)
	require.Len(t, source.Migrations, 2)
	assert.Equal(t, "2_b", source.Migrations[1].Id)
	assert.Equal(t, []string{"DROP TABLE 2_b;"}, source.Migrations[1].Down)

	_, err = migration.MemorySource(context.Background(), []migration.Migrate{
		fakeMigration{id: "1_a", seq: 1},
		fakeMigration{id: "1_a", seq: 2},
	})
	assert.Error(t, err)

	_, err = migration.MemorySource(context.Background(), []migration.Migrate{
		fakeMigration{id: "1_a", seq: 1},
		fakeMigration{id: "2_b", seq: 1},
	})
	assert.Error(t, err)
}

func TestNewSQLImmigration_Validation(t *testing.T) {
	_, err := migration.NewSQLImmigration(context.Background(), migration.SQLImmigrationConfig{
		Dialect: "sqlite",
	})
	assert.Error(t, err)

	_, err = migration.NewSQLImmigration(context.Background(), migration.SQLImmigrationConfig{
		Dialect:        "postgres",
		MigrationTable: "migrations",
		Migrations:     []migration.Migrate{fakeMigration{id: "1_a", seq: 1}},
	})
	assert.Error(t, err, "db is required")
}
