package config

import (
	"time"

	"embeddingsqna/global"
	"embeddingsqna/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func initDB() {
	dsn := AppConfig.Database.Dsn
	if dsn == "" {
		global.Logger.Info("database dsn empty, answer history disabled")
		return
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		global.Logger.Fatal("failed to initialize database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		global.Logger.Fatal("failed to get sql.DB", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(orInt(AppConfig.Database.MaxIdleConns, 10))
	sqlDB.SetMaxOpenConns(orInt(AppConfig.Database.MaxOpenConns, 100))
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.AnswerRecord{}); err != nil {
		global.Logger.Fatal("failed to migrate answer records", zap.Error(err))
	}

	global.Db = db
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
