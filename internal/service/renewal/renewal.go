package renewal

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/LouYuanbo1/hidenrenew/internal/config"
	"github.com/LouYuanbo1/hidenrenew/internal/domain/entity"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser"
	"github.com/LouYuanbo1/hidenrenew/param"
)

// 续费流程中涉及的按钮文本与弹窗签名,全部来自站点页面
const (
	renewButtonText         = "Renew"
	createInvoiceButtonText = "Create Invoice"
	payButtonText           = "Pay"

	restrictionTitle   = "Renewal Restricted"
	restrictionMessage = "You can only renew your free service when there is less than 1 day left before it expires"

	confirmationTitle   = "Renew Plan"
	confirmationMessage = "Below you can renew your service for another Week"

	invoiceSuccessTitle     = "Success!"
	invoiceGeneratedMessage = "Invoice has been generated successfully"

	dueDateLabel = "Due date"
)

// Executor 针对单台服务器执行续费流水线
// 点击Renew → 识别弹窗 → 创建发票 → 支付 → 确认跳转,每一步的结果显式落到RenewalResult上,
// 不会把错误抛出自身边界
type Executor struct {
	site   *param.Site
	timing *param.Timing
	logger zerolog.Logger
}

func InitExecutor(site *param.Site, timing *param.Timing, logger zerolog.Logger) *Executor {
	return &Executor{site: site, timing: timing, logger: logger}
}

// Process 处理一台服务器,总是返回一条完成填充的结果记录
func (e *Executor) Process(page browser.Page, accountName string, server *config.ServerTarget) *entity.RenewalResult {
	result := entity.NewRenewalResult(accountName, server.Label(), server.URL)
	logger := e.logger.With().Str("server", result.ServerLabel).Logger()

	logger.Info().Msgf("🌐 正在访问服务器管理页面: %s", server.URL)
	if err := page.Navigate(server.URL, e.timing.NavigateTimeout); err != nil {
		logger.Error().Err(err).Msg("❌ 服务器页面加载失败")
		result.Status = entity.StatusFailed
		return result
	}

	e.performRenewal(page, result, logger)
	return result
}

func (e *Executor) performRenewal(page browser.Page, result *entity.RenewalResult, logger zerolog.Logger) {
	logger.Info().Msg("🔄 开始执行续费操作")

	// 先记录续费前的到期时间,拿不到也不影响后续流程
	result.OldDueDate = e.recordDueDate(page, "续费前", logger)

	state, err := page.ButtonState(renewButtonText, false, e.timing.LocateTimeout)
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ 检查Renew按钮状态失败")
		result.Status = entity.StatusFailed
		return
	}
	switch state {
	case browser.ElementMissing:
		logger.Warn().Msg("⚠️ 未找到Renew按钮")
		result.Status = entity.StatusFailed
	case browser.ElementDisabled:
		logger.Warn().Msg("⚠️ Renew按钮存在但不可点击,可能服务不需要续费")
		result.Status = entity.StatusNotNeeded
	case browser.ElementEnabled:
		logger.Info().Msg("🎯 找到Renew按钮,准备点击")
		if err := page.ClickButton(renewButtonText, false, e.timing.LocateTimeout); err != nil {
			logger.Warn().Err(err).Msg("⚠️ 点击Renew按钮失败")
			result.Status = entity.StatusFailed
			return
		}
		logger.Info().Msg("✅ 已点击Renew按钮")
		e.handleRenewalDialog(page, result, logger)
	}
}

// handleRenewalDialog 点击Renew后站点只会出现两种弹窗之一:
// 续费限制(未到期)或续费确认(生成发票),都不匹配时状态保持Unknown
func (e *Executor) handleRenewalDialog(page browser.Page, result *entity.RenewalResult, logger zerolog.Logger) {
	logger.Info().Msg("💬 等待弹窗出现")
	time.Sleep(e.timing.DialogSettle)

	body, err := page.BodyText()
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ 读取弹窗内容失败")
		return
	}

	if strings.Contains(body, restrictionTitle) && strings.Contains(body, restrictionMessage) {
		logger.Info().Msg("📋 检测到续费限制弹窗,未到续期时间")
		if days, ok := ExtractRemainingDays(body); ok {
			result.RemainingDays = &days
			logger.Info().Msgf("📅 剩余天数: %d天", days)
		}
		result.Status = entity.StatusUnexpired
		return
	}

	if strings.Contains(body, confirmationTitle) && strings.Contains(body, confirmationMessage) {
		logger.Info().Msg("📋 检测到续费确认弹窗,开始执行续费流程")
		if err := page.ClickButton(createInvoiceButtonText, false, e.timing.LocateTimeout); err != nil {
			logger.Warn().Err(err).Msg("⚠️ 点击Create Invoice按钮失败")
			return
		}
		logger.Info().Msg("✅ Invoice创建请求已提交")
		e.handleInvoiceAndPayment(page, result, logger)
		return
	}

	logger.Warn().Msg("⚠️ 未检测到预期的弹窗")
}

func (e *Executor) handleInvoiceAndPayment(page browser.Page, result *entity.RenewalResult, logger zerolog.Logger) {
	// 发票在服务端异步生成,静置后再检查当前页面
	logger.Info().Msg("💳 等待Invoice页面加载")
	time.Sleep(e.timing.InvoiceSettle)

	isInvoiceURL := strings.Contains(page.URL(), e.site.InvoiceFragment)
	body, err := page.BodyText()
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ 读取Invoice页面内容失败")
		return
	}
	payState, err := page.ButtonState(payButtonText, true, e.timing.LocateTimeout)
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ 检查Pay按钮状态失败")
		return
	}

	if !isInvoiceURL ||
		!strings.Contains(body, invoiceSuccessTitle) ||
		!strings.Contains(body, invoiceGeneratedMessage) ||
		payState != browser.ElementEnabled {
		logger.Warn().Msgf("⚠️ 当前页面不是预期的Invoice页面: %s", page.URL())
		return
	}

	logger.Info().Msg("✅ 确认为Invoice页面,开始支付流程")
	if err := page.ClickButton(payButtonText, true, e.timing.LocateTimeout); err != nil {
		logger.Warn().Err(err).Msg("⚠️ 点击Pay按钮失败")
		return
	}
	logger.Info().Msg("✅ 支付请求已提交")

	time.Sleep(e.timing.PaymentSettle)
	e.checkPaymentResult(page, result, logger)
}

func (e *Executor) checkPaymentResult(page browser.Page, result *entity.RenewalResult, logger zerolog.Logger) {
	logger.Info().Msg("🔍 等待支付处理完成")

	if err := page.WaitURLContains(e.site.DashboardPath, e.timing.PaymentTimeout); err != nil {
		// 支付结果未知,状态保持Unknown交给汇总侧判定
		logger.Warn().Err(err).Msg("⚠️ 支付后未跳转回Dashboard,支付结果未确认")
		return
	}

	logger.Info().Msg("✅ 已跳转回Dashboard页面")
	result.Status = entity.StatusSuccess

	if result.ServerURL == "" {
		return
	}
	if err := page.Navigate(result.ServerURL, e.timing.NavigateTimeout); err != nil {
		logger.Warn().Err(err).Msg("⚠️ 返回服务器页面失败,无法记录新的到期时间")
		return
	}
	time.Sleep(e.timing.DueDateSettle)
	result.NewDueDate = e.recordDueDate(page, "续费后", logger)
}

// recordDueDate 读取Due date标签所在容器并提取到期时间
// 标签或日期缺失都只记警告,返回空串
func (e *Executor) recordDueDate(page browser.Page, stage string, logger zerolog.Logger) string {
	text, err := page.LabelContainerText(dueDateLabel, e.timing.LocateTimeout)
	if err != nil {
		logger.Warn().Err(err).Msgf("⚠️ 获取%s到期时间失败", stage)
		return ""
	}
	due := ExtractDueDate(text)
	if due == "" {
		logger.Warn().Msgf("⚠️ %s页面上未找到到期时间", stage)
		return ""
	}
	logger.Info().Msgf("📅 %s到期时间: %s", stage, due)
	return due
}
