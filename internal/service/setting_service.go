package service

import (
	"context"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settingCacheTTL = 5 * time.Minute

// SettingService 全局配置项读写。读路径带 redis 缓存，
// rdb 为 nil 时（测试环境）直接打库。
type SettingService struct {
	Repo *repository.SettingRepository
	rdb  *redis.Client
}

func NewSettingService(repo *repository.SettingRepository, rdb *redis.Client) *SettingService {
	return &SettingService{Repo: repo, rdb: rdb}
}

func cacheKey(key string) string {
	return "setting:" + key
}

// Get 固定键取值，缺省值兜底（get-or-default）
func (s *SettingService) Get(ctx context.Context, key, defaultValue string) string {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey(key)).Result(); err == nil {
			return cached
		}
	}

	setting, err := s.Repo.FindByKey(key)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Log.Error("setting lookup failed", zap.String("key", key), zap.Error(err))
		}
		return defaultValue
	}

	if s.rdb != nil {
		s.rdb.Set(ctx, cacheKey(key), setting.Value, settingCacheTTL)
	}
	return setting.Value
}

func (s *SettingService) Set(ctx context.Context, key, value string) error {
	if err := s.Repo.Upsert(key, value); err != nil {
		return err
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, cacheKey(key))
	}
	return nil
}
