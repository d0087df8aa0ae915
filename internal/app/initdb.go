package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/potonglab/barbershop/config"
	"github.com/potonglab/barbershop/internal/domain"
)

func getDatabase(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=Asia/Jakarta",
		cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConn)
	sqlDB.SetMaxIdleConns(cfg.IdleConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// checkSuper makes sure a default admin account exists so a fresh install
// is reachable.
func (a *Application) checkSuper() {
	const superEmail = "admin@barbershop.local"
	const defaultPassword = "barbershop"

	var admin domain.User
	err := a.gormDB.Where("email = ?", superEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, herr := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		if cerr := a.gormDB.Create(&domain.User{
			Name:     "administrator",
			Email:    superEmail,
			Password: string(hashed),
			Role:     domain.RoleAdmin,
		}).Error; cerr != nil {
			zap.L().Error("failed to create default admin", zap.Error(cerr))
			return
		}
		zap.L().Info("initialized default admin account", zap.String("email", superEmail))
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
	case admin.Role != domain.RoleAdmin:
		if uerr := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).
			Update("role", domain.RoleAdmin).Error; uerr != nil {
			zap.L().Error("failed to repair default admin role", zap.Error(uerr))
			return
		}
		zap.L().Warn("repaired default admin role", zap.String("email", superEmail))
	}
}
