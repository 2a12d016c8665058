package sqlstore

import (
	"context"
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// MySQL错误码
const (
	mysqlDuplicateEntry   = 1062 // Duplicate entry 'xxx' for key 'yyy'
	mysqlLockWaitTimeout  = 1205 // Lock wait timeout exceeded
	mysqlDeadlockDetected = 1213 // Deadlock found when trying to get lock
)

// isDuplicateError 判断是否为唯一索引冲突错误
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	// GORM v2的错误判断(需要开启TranslateError)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	// 兼容检查:错误信息包含"Duplicate entry"
	return strings.Contains(err.Error(), "Duplicate entry")
}

// isConflictError 判断是否为可重试的并发冲突
// MySQL: 死锁(1213)、锁等待超时(1205)
// SQLite: 数据库忙(BUSY)、表被锁(LOCKED)
func isConflictError(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlockDetected || myErr.Number == mysqlLockWaitTimeout
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// wrapDBError 把驱动错误转换成业务错误
// 教学要点:并发冲突和超时要保留各自的错误码,上层据此决定重试还是放弃
func wrapDBError(err error, message string) error {
	switch {
	case isConflictError(err):
		return apperrors.WithCode(err, apperrors.ErrCodeConcurrencyConflict, message+": 并发冲突")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.WithCode(err, apperrors.ErrCodeTimeout, message+": 超时")
	default:
		return apperrors.Wrap(err, message)
	}
}
