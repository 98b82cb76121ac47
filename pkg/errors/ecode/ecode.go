package ecode

// 业务错误码，0 表示成功
const (
	Success = 0

	Unknown        = 10001
	ValidateErr    = 10002
	NotFoundErr    = 10003
	RequireAuthErr = 10004

	// 上游数据源不可用（重试耗尽/超时）
	UpstreamErr = 20001
	// 成交数据非法（价格/数量非正、时间乱序）
	InvalidFillErr = 20002
)
