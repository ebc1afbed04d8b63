package db

import (
	"database/sql"
	"fmt"
	"time"

	"Bt1QAuth/config"
	"Bt1QAuth/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormDB is the GORM connection, used for schema migration.
var GormDB *gorm.DB

// DB is the underlying sql.DB pool shared with the repositories.
var DB *sql.DB

// ConnectDB establishes the database connection through GORM and configures
// the underlying connection pool. Repositories use the raw pool directly.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB, err = GormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// 设置连接池参数
	DB.SetMaxIdleConns(10)
	DB.SetMaxOpenConns(100)
	DB.SetConnMaxLifetime(time.Hour)

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// InitDB creates or updates the users table via AutoMigrate. The unique
// indexes it creates (uq_users_username, uq_users_email) are what the
// repository relies on for duplicate detection.
func InitDB() error {
	if GormDB == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := GormDB.AutoMigrate(&model.User{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func Close() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}
