package database

import (
	"fmt"
	"log"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认不迁移，需显式传 -migrate / -migrate-only
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.IntakeSession{},
			&model.IntakeResponse{},
			&model.MasteryEvent{},
			&model.SkillMastery{},
			&model.StudentRoadmap{},
			&model.RoadmapItem{},
		)

		if err != nil {
			return nil, err
		}

		log.Println("Database migration completed")
	}

	// 默认管理员（仅空库时创建，密码务必在首次登录后修改）
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("skillpath-admin"), bcrypt.DefaultCost)
		if err == nil {
			admin := &model.User{
				Name:     "admin",
				Email:    "admin@skillpath.local",
				Password: string(hashed),
				Role:     model.Admin,
			}
			db.Create(admin)
		}
	}

	return db, nil
}
