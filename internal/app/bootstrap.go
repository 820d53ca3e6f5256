package app

import (
	"context"
	"fmt"

	"scms_backend/internal/config"
	"scms_backend/internal/repository"
	"scms_backend/internal/service"
	"scms_backend/internal/util"
	"scms_backend/pkg/database"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// OfflineStore 命令行工具使用的投诉存储，不启动后台持久化，修改后需调用 Flush
type OfflineStore struct {
	Complaints *service.ComplaintService
	DB         *gorm.DB
	Redis      *redis.Client
}

// OpenOfflineStore 按配置连接存储并加载全部投诉
func OpenOfflineStore(ctx context.Context, cfg *config.Config) (*OfflineStore, error) {
	st := &OfflineStore{}

	if cfg.Persistence.Type == util.PersistenceDatabase {
		db, err := database.InitDB(&cfg.Database, false)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		st.DB = db
	}
	if cfg.Persistence.Type == util.PersistenceRedis {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		st.Redis = rdb
	}

	snapshots, err := repository.NewSnapshotStore(cfg, st.DB, st.Redis)
	if err != nil {
		st.Close()
		return nil, err
	}

	st.Complaints = service.NewComplaintService(service.ComplaintServiceOptions{
		IDs:                service.NewIDGenerator(cfg.Complaint.IDStrategy),
		Policy:             service.NewTransitionPolicy(cfg.Lifecycle.TransitionPolicy, cfg.Lifecycle.AllowReopen),
		Directory:          service.NewDirectory(cfg.Departments),
		Snapshots:          snapshots,
		RejectReassignment: cfg.Lifecycle.RejectReassignment,
	})
	if _, err := st.Complaints.Load(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func (s *OfflineStore) Flush(ctx context.Context) error {
	return s.Complaints.Flush(ctx)
}

func (s *OfflineStore) Close() {
	if s.Redis != nil {
		s.Redis.Close()
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
