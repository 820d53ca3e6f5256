package repository

import (
	"context"

	"scms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const saveBatchSize = 100

// ComplaintRepository 关系型数据库中的投诉表，同时作为快照存储使用
type ComplaintRepository struct {
	DB *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) *ComplaintRepository {
	return &ComplaintRepository{DB: db}
}

// Save 按主键 upsert 全量投诉，投诉没有删除路径，不清理表中多余的行
func (r *ComplaintRepository) Save(ctx context.Context, complaints []model.Complaint) error {
	if len(complaints) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(complaints, saveBatchSize).Error
	})
}

func (r *ComplaintRepository) Load(ctx context.Context) ([]model.Complaint, error) {
	var complaints []model.Complaint
	err := r.DB.WithContext(ctx).Order("date_submitted asc, id asc").Find(&complaints).Error
	return complaints, err
}

type StatusCount struct {
	Status model.ComplaintStatus
	Count  int64
}

// CountByStatus 直接在数据库中聚合，命令行工具使用
func (r *ComplaintRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.DB.WithContext(ctx).Model(&model.Complaint{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}
