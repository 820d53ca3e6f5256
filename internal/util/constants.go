package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	PersistenceFile     = "file"
	PersistenceDatabase = "database"
	PersistenceRedis    = "redis"
)

const (
	IDStrategySequential = "sequential"
	IDStrategyUUID       = "uuid"
)

const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

const (
	MaxDescriptionLength = 1000
	ComplaintIDPrefix    = "COMP-"
)

// 附件相关常量
const (
	MB                     = 1024 * 1024
	MaxFilesPerComplaint   = 5
	MaxTotalAttachmentSize = 25 * MB
	MimePDF                = "application/pdf"
	MimeMSWord             = "application/msword"
	MimeWordDocx           = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText               = "text/plain"
)

// AllowedAttachmentTypes MIME -> 单文件大小上限
var AllowedAttachmentTypes = map[string]int64{
	"image/jpeg": 5 * MB,
	"image/png":  5 * MB,
	"image/gif":  5 * MB,
	MimePDF:      10 * MB,
	MimeMSWord:   10 * MB,
	MimeWordDocx: 10 * MB,
	MimeText:     1 * MB,
}
