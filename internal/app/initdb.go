package app

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/pkg/common"
)

func (a *Application) checkSuper() {
	const superEmail = "admin@viewguard.local"
	const defaultPassword = "viewguard"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var admin domain.User
	err = a.gormDB.Where("email = ?", superEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			FirstName: "System",
			LastName:  "Administrator",
			Email:     superEmail,
			Phone:     "0000",
			Password:  string(hashed),
			Role:      "admin",
			LastLogin: time.Now(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(admin.Password) == ""
	resetRole := !strings.EqualFold(admin.Role, "admin")

	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hashed)
	}
	if resetRole {
		updates["role"] = "admin"
	}

	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("email", superEmail),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}

// defaultSettings are the portal knobs an operator tunes without redeploying.
var defaultSettings = []domain.SysConfig{
	{Sort: 1, Type: "portal", Name: "SiteName", Value: "ViewGuard Security", Remark: "Public site name"},
	{Sort: 2, Type: "portal", Name: "SupportEmail", Value: "support@viewguard.local", Remark: "Support contact shown on the site"},
	{Sort: 3, Type: "portal", Name: "MessageRetentionDays", Value: "30", Remark: "Days a resolved message stays before auto-archive"},
	{Sort: 4, Type: "portal", Name: "OprLogRetentionDays", Value: "365", Remark: "Days an audit log row is kept"},
}

func (a *Application) checkSettings() {
	for _, s := range defaultSettings {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", s.Type, s.Name).
			Count(&count)
		if count == 0 {
			s.ID = common.UUIDint64()
			s.CreatedAt = time.Now()
			s.UpdatedAt = time.Now()
			a.gormDB.Create(&s)
			zap.L().Info("initialized config",
				zap.String("key", s.Type+"."+s.Name),
				zap.String("default", s.Value))
		}
	}
}

// checkPlans seeds the pricing catalog shown on the marketing page.
func (a *Application) checkPlans() {
	defaultPlans := []domain.PricingPlan{
		{
			Name: "Home Basic", CameraCount: 2, Price: 299, Discount: 0,
			Features: []string{"2 HD cameras", "Mobile app access", "7-day cloud storage"},
		},
		{
			Name: "Home Plus", CameraCount: 4, Price: 549, Discount: 50, Popular: true,
			Features: []string{"4 HD cameras", "Mobile app access", "30-day cloud storage", "Night vision"},
		},
		{
			Name: "Business", CameraCount: 8, Price: 999, Discount: 100,
			Features: []string{"8 HD cameras", "Mobile app access", "90-day cloud storage", "Night vision", "Priority support"},
		},
	}

	for _, p := range defaultPlans {
		var count int64
		a.gormDB.Model(&domain.PricingPlan{}).Where("name = ?", p.Name).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			p.Enabled = true
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default plan", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default plan", zap.String("name", p.Name))
			}
		}
	}
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, name string) string {
	var cfg domain.SysConfig
	if err := a.gormDB.Where("type = ? and name = ?", category, name).First(&cfg).Error; err != nil {
		return ""
	}
	return cfg.Value
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, name string) int64 {
	return cast.ToInt64(a.GetSettingsStringValue(category, name))
}
