package services

// 托管方（YouTube Data API）的配额成本模型。配额余量不在本地预计算，
// 流水线通过托管方的 403 quota 错误被动感知耗尽；这里的常量只用来
// 约束 Sweeper 的批量上限与管理面的估算。
const (
	// UploadCostUnits 是一次 videos.insert 的固定配额成本。
	UploadCostUnits = 1600
	// DailyQuotaUnits 是项目默认的每日配额总量。
	DailyQuotaUnits = 10000
	// MaxDailyUploads 是一天内可能成功的上传次数上限（10000/1600 = 6）。
	MaxDailyUploads = DailyQuotaUnits / UploadCostUnits
)
