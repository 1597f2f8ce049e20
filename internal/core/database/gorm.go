package database

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
)

type Opts struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	ConnAttempts       int // 启动期重试次数，<=0 按 1 次
	ConnBackoffSec     int // 固定间隔，不做指数退避
}

var ErrUnsupportedDriver = gorm.ErrInvalidDB

func NewGorm(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "postgres":
		dial = postgres.Open(o.DSN)
	case "mysql":
		dial = mysql.Open(o.DSN)
	default:
		return nil, ErrUnsupportedDriver
	}
	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(lvl),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	db = db.
		Session(&gorm.Session{
			PrepareStmt:            true, // 预编译缓存，提高 QPS
			CreateBatchSize:        200,  // 批量写
			SkipDefaultTransaction: true, // 只在需要时手动开 Tx
		})
	return db, nil
}

// OpenWithRetry 仅进程启动时重试；失败固定间隔再试，
// 次数用完直接把最后一次错误抛给调用方
func OpenWithRetry(o Opts) (*gorm.DB, error) {
	attempts := o.ConnAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := time.Duration(o.ConnBackoffSec) * time.Second

	var db *gorm.DB
	var err error
	for i := 0; i < attempts; i++ {
		db, err = NewGorm(o)
		if err == nil {
			return db, nil
		}
		if i < attempts-1 {
			time.Sleep(backoff)
		}
	}
	return nil, err
}
