package db

import (
	"database/sql"
)

// Database is a connectable SQL store. Connect also brings the schema up to date.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
