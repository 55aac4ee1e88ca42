package multidb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"go.uber.org/multierr"
)

type SqlDbConnMakerConfig struct {
	Config DatabaseResources `validate:"required"`
}

type SqlDbConnMaker struct {
	conf     DatabaseResources
	disabled map[string]struct{} // list of disabled databases, using struct for minimal memory footprint
	dbSQL    map[string]*sqlx.DB // db label => real connection
	dbDriver map[string]Driver   // db label => driver name
	closer   []*namedCloser
}

var _ MultiDB = (*SqlDbConnMaker)(nil)

// NewSqlDbConnMaker opens every enabled resource. Connections are lazy, the caller pings when it needs to.
func NewSqlDbConnMaker(conf SqlDbConnMakerConfig) (*SqlDbConnMaker, error) {
	err := validator.Validate(conf)
	if err != nil {
		err = fmt.Errorf("sql db connection maker failed: %w", err)
		return nil, err
	}

	instance := &SqlDbConnMaker{
		conf:     conf.Config,
		disabled: make(map[string]struct{}),
		dbSQL:    make(map[string]*sqlx.DB),
		dbDriver: make(map[string]Driver),
		closer:   make([]*namedCloser, 0),
	}

	err = instance.connect()
	if err != nil {
		// close previous opened connection if error happen
		if _err := instance.Close(); _err != nil {
			err = fmt.Errorf("close db sql error: %w: %s", err, _err)
		}

		return nil, err
	}

	return instance, nil
}

func (i *SqlDbConnMaker) GetSqlx(driver Driver, key string) (*sqlx.DB, error) {
	key = normalizeLabel(key)
	if _, exists := i.disabled[key]; exists {
		return nil, fmt.Errorf("db with key '%s' is disabled", key)
	}

	dbConnection, ok := i.dbSQL[key]
	if !ok {
		return nil, fmt.Errorf("key '%s' is not exist on db list", key)
	}

	if registeredDriver := i.dbDriver[key]; registeredDriver != driver {
		return nil, fmt.Errorf("db key '%s' not using driver %s", key, driver)
	}

	return dbConnection, nil
}

func (i *SqlDbConnMaker) Ping(ctx context.Context, driver Driver, key string) error {
	db, err := i.GetSqlx(driver, key)
	if err != nil {
		return err
	}

	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db '%s': %w", normalizeLabel(key), err)
	}

	return nil
}

func (i *SqlDbConnMaker) Close() error {
	var err error
	for _, c := range i.closer {
		err = multierr.Append(err, c.Close())
	}

	return err
}

func (i *SqlDbConnMaker) connect() error {
	for dbLabel, dbConfig := range i.conf {
		dbLabel = normalizeLabel(dbLabel)
		if err := validator.Var(dbLabel, "required,alphanum"); err != nil {
			err = fmt.Errorf("error connecting to database dbLabel '%s': %w", dbLabel, err)
			return err
		}

		if dbConfig.Disable {
			i.disabled[dbLabel] = struct{}{}
			continue
		}

		var sqlxConn *sqlx.DB
		switch dbConfig.Driver {
		case Postgres:
			db, err := open(dbLabel, dbConfig.Driver, dbConfig.Postgres)
			if err != nil {
				return err
			}

			sqlxConn = sqlx.NewDb(db, dbConfig.Driver.String())

		default:
			return fmt.Errorf("not supported driver '%s' on db label '%s'", dbConfig.Driver, dbLabel)
		}

		// don't forget to register in closer, using unique name to track in the Log
		i.dbSQL[dbLabel] = sqlxConn
		i.dbDriver[dbLabel] = dbConfig.Driver
		i.closer = append(i.closer, &namedCloser{name: dbLabel, closer: sqlxConn})
	}

	return nil
}

func open(dbLabel string, driver Driver, conf GoSqlDb) (*sql.DB, error) {
	db, err := sql.Open(driver.String(), conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("cannot open db connection '%s': %w", dbLabel, err)
	}

	if conf.Debug {
		logged := sqldblogger.OpenDriver(conf.DSN, db.Driver(), &QueryLogger{}, sqldblogger.WithConnectionIDFieldname(dbLabel))
		_ = db.Close() // nothing was dialed yet, only the driver is reused
		db = logged
	}

	if conf.MaxOpenConns > 0 {
		db.SetMaxOpenConns(conf.MaxOpenConns)
	}

	if conf.MaxIdleConns > 0 {
		db.SetMaxIdleConns(conf.MaxIdleConns)
	}

	if conf.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(conf.ConnMaxLifetime)
	}

	return db, nil
}

func normalizeLabel(label string) string {
	return strings.TrimSpace(strings.ToLower(label))
}
