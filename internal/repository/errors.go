package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrQueueItemResolved = errors.New("queue item already resolved")
	ErrQueueItemMissing  = errors.New("queue item not found")
)

// IsDuplicateKey 并发写入同一唯一键时 MySQL 返回 1062
func IsDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
