package entity

import "time"

// RenewalStatus 单台服务器续费流程的终态
type RenewalStatus string

const (
	// StatusUnknown 默认状态,流程没有到达任何终态分支
	StatusUnknown RenewalStatus = "Unknown"
	// StatusSuccess 续费完成且支付成功
	StatusSuccess RenewalStatus = "Success"
	// StatusUnexpired 站点拒绝续费,距离到期时间还早
	StatusUnexpired RenewalStatus = "Unexpired"
	// StatusNotNeeded Renew按钮存在但不可点击,站点判定无需续费
	StatusNotNeeded RenewalStatus = "NotNeeded"
	// StatusFailed 导航或定位控件时发生硬错误
	StatusFailed RenewalStatus = "Failed"
)

// Succeeded 汇总统计时视为成功的状态
func (s RenewalStatus) Succeeded() bool {
	switch s {
	case StatusSuccess, StatusUnexpired, StatusNotNeeded:
		return true
	default:
		return false
	}
}

// RenewalResult 一个(账号,服务器)组合的续费记录
// 由处理该服务器的执行器独占持有并就地更新,结束后交给报告生成器
type RenewalResult struct {
	AccountName   string
	ServerLabel   string
	ServerURL     string
	Status        RenewalStatus
	RemainingDays *int
	OldDueDate    string
	NewDueDate    string
	StartTime     string
}

// NewRenewalResult 在开始处理一台服务器时创建记录,初始状态为Unknown
func NewRenewalResult(accountName, serverLabel, serverURL string) *RenewalResult {
	return &RenewalResult{
		AccountName: accountName,
		ServerLabel: serverLabel,
		ServerURL:   serverURL,
		Status:      StatusUnknown,
		StartTime:   time.Now().Format("2006-01-02 15:04:05"),
	}
}
