package pgsql_tokenrepo

import "github.com/yusufsyaifudin/fcmpush/pkg/migration"

// Migrations lists every device token migration in the order they must run.
func Migrations() []migration.Migrate {
	return []migration.Migrate{
		new(CreateDeviceTokensTable1697700000),
		new(CreateDeviceTokensLookupIndex1697700100),
	}
}
