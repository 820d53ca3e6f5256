package service

import (
	"strings"

	"scms_backend/internal/model"
	"scms_backend/internal/util"
)

// AttachmentPolicy 附件数量、总大小和单类型大小限制
type AttachmentPolicy struct {
	MaxFiles     int
	MaxTotalSize int64
	TypeLimits   map[string]int64
}

func DefaultAttachmentPolicy() AttachmentPolicy {
	return AttachmentPolicy{
		MaxFiles:     util.MaxFilesPerComplaint,
		MaxTotalSize: util.MaxTotalAttachmentSize,
		TypeLimits:   util.AllowedAttachmentTypes,
	}
}

// Validate 校验一组附件，existing 为投诉上已有的附件
func (p AttachmentPolicy) Validate(existing, added []model.AttachmentFile) error {
	if len(existing)+len(added) > p.MaxFiles {
		return util.NewValidationError("attachments", "at most %d files are allowed", p.MaxFiles)
	}

	var total int64
	for _, f := range existing {
		total += f.Size
	}
	for _, f := range added {
		if strings.TrimSpace(f.Name) == "" {
			return util.NewValidationError("attachments", "file name is required")
		}
		if f.Size < 0 {
			return util.NewValidationError("attachments", "%s has a negative size", f.Name)
		}
		limit, ok := p.TypeLimits[util.NormalizeMimeType(f.Type)]
		if !ok {
			return util.NewValidationError("attachments", "file type %q is not allowed", f.Type)
		}
		if f.Size > limit {
			return util.NewValidationError("attachments", "%s exceeds the %s limit for %s", f.Name, util.FormatSize(limit), f.Type)
		}
		total += f.Size
	}
	if total > p.MaxTotalSize {
		return util.NewValidationError("attachments", "total attachment size exceeds %s", util.FormatSize(p.MaxTotalSize))
	}
	return nil
}
