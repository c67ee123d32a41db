package database

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName is the database/sql driver used for the catalog. It is
// the stock sqlite3 driver plus a unicode_lower SQL function, since SQLite's
// built-in LOWER only folds ASCII.
const SQLiteDriverName = "sqlite3_catalog"

// UnicodeLower is the SQL function registered on every SQLiteDriverName
// connection.
const UnicodeLower = "unicode_lower"

var registerSQLite sync.Once

// SQLiteDialector returns a gorm dialector for the SQLite file at path that
// opens connections through SQLiteDriverName.
func SQLiteDialector(path string) gorm.Dialector {
	registerSQLite.Do(func() {
		sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc(UnicodeLower, strings.ToLower, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: path})
}

// LowerFunc names the SQL function that lower-cases text the same way
// strings.ToLower does on db's dialect.
func LowerFunc(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return UnicodeLower
	}
	return "LOWER"
}
