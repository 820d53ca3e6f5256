package repository

import (
	"context"
	"fmt"

	"scms_backend/internal/config"
	"scms_backend/internal/model"
	"scms_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SnapshotStore 全量保存和读取投诉
type SnapshotStore interface {
	Save(ctx context.Context, complaints []model.Complaint) error
	Load(ctx context.Context) ([]model.Complaint, error)
}

// NewSnapshotStore 按 persistence.type 选择实现，对应的连接必须已建立
func NewSnapshotStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (SnapshotStore, error) {
	switch cfg.Persistence.Type {
	case util.PersistenceDatabase:
		if db == nil {
			return nil, fmt.Errorf("persistence type %q requires a database connection", cfg.Persistence.Type)
		}
		return NewComplaintRepository(db), nil
	case util.PersistenceRedis:
		if rdb == nil {
			return nil, fmt.Errorf("persistence type %q requires redis", cfg.Persistence.Type)
		}
		return NewRedisSnapshotStore(rdb, cfg.Redis.SnapshotKey), nil
	case util.PersistenceFile, "":
		return NewFileSnapshotStore(cfg.Persistence.FilePath), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type %q", cfg.Persistence.Type)
	}
}
