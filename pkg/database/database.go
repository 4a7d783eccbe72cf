package database

import (
	"cyberguard_backend/internal/config"
	"cyberguard_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ShouldMigrate release 模式默认跳过启动迁移，由 -migrate 显式开启；
// 其他模式每次启动都执行 AutoMigrate。
func ShouldMigrate(mode string, force bool) bool {
	return force || mode != "release"
}

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

// Migrate 建表并写入默认配置行，测试里也直接用它初始化 sqlite。
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Assessment{},
		&model.AssessmentQuestion{},
		&model.AssessmentProgress{},
		&model.AssessmentSubmission{},
		&model.Risk{},
		&model.Asset{},
		&model.Framework{},
		&model.Control{},
		&model.DPIA{},
		&model.Report{},
		&model.Setting{},
		&model.AdvisorMessage{},
	)
	if err != nil {
		return err
	}

	// 默认顾问提示词，管理端可改
	var count int64
	db.Model(&model.Setting{}).Where("`key` = ?", model.SettingAdvisorPrompt).Count(&count)
	if count == 0 {
		db.Create(&model.Setting{
			Key:   model.SettingAdvisorPrompt,
			Value: "你是一名网络安全合规顾问，请基于组织的评估结果、风险登记册与合规框架，用专业、克制的语气回答用户的问题。",
		})
	}

	return nil
}
