// Package repository holds the MySQL data access layer. Lookups that
// miss translate sql.ErrNoRows into the booking package's sentinel
// errors so the engine never has to know about database/sql.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"roombook/internal/booking"
)

// MySQL "Lock wait timeout exceeded; try restarting transaction".
const mysqlErrLockWaitTimeout = 1205

// lockErr maps a lock-wait timeout onto the booking sentinel and
// leaves every other error untouched.
func lockErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrLockWaitTimeout {
		return booking.ErrLockTimeout
	}
	return err
}
