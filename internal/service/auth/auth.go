package auth

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/LouYuanbo1/hidenrenew/internal/config"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser"
	"github.com/LouYuanbo1/hidenrenew/param"
)

// 登录页面的固定选择器
const (
	emailSelector    = `input[name="email"]`
	passwordSelector = `input[name="password"]`
	submitSelector   = `button[type="submit"]`

	turnstileFrameSelector    = `iframe[src*="challenges.cloudflare.com"]`
	turnstileCheckboxSelector = `input[type="checkbox"]`
)

// turnstileTokenJS Turnstile通过后响应令牌字段变为非空
const turnstileTokenJS = `() => {
	const el = document.querySelector('[name="cf-turnstile-response"]');
	return !!(el && el.value);
}`

// Authenticator 负责把会话置于已登录状态
// 优先Cookie登录,失效时清除Cookie回落到邮箱密码登录,结果只以布尔返回,不做重试
type Authenticator struct {
	site   *param.Site
	timing *param.Timing
	logger zerolog.Logger
}

func InitAuthenticator(site *param.Site, timing *param.Timing, logger zerolog.Logger) *Authenticator {
	return &Authenticator{site: site, timing: timing, logger: logger}
}

// Login 执行智能登录策略,返回会话是否已认证
func (a *Authenticator) Login(sess browser.Session, account *config.AccountConfig) bool {
	if a.tryCookieLogin(sess, account) {
		a.logger.Info().Msg("🎉 Cookie登录成功")
		return true
	}
	if a.tryPasswordLogin(sess.Page(), account) {
		a.logger.Info().Msg("🎉 邮箱密码登录成功")
		return true
	}
	a.logger.Error().Msg("❌ 所有登录方式均失败")
	return false
}

func (a *Authenticator) tryCookieLogin(sess browser.Session, account *config.AccountConfig) bool {
	if account.Cookie == "" {
		a.logger.Info().Msg("⏭️ 未提供Cookie,跳过Cookie登录")
		return false
	}

	a.logger.Info().Msg("🪙 开始尝试Cookie登录")
	cookie := &browser.Cookie{
		Name:     a.site.CookieName,
		Value:    account.Cookie,
		Domain:   a.site.CookieDomain,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}
	if err := sess.SetCookie(cookie); err != nil {
		a.logger.Error().Err(err).Msg("❌ Cookie设置失败")
		return false
	}

	page := sess.Page()
	if err := page.Navigate(a.site.DashboardURL(), a.timing.NavigateTimeout); err != nil {
		a.logger.Warn().Err(err).Msg("⚠️ Cookie登录验证导航失败")
		return false
	}

	if a.isLoginRequired(page) {
		a.logger.Warn().Msg("⚠️ Cookie已失效,清除后回落到密码登录")
		if err := sess.ClearCookies(); err != nil {
			a.logger.Warn().Err(err).Msg("⚠️ 清除Cookie失败")
		}
		return false
	}
	return true
}

func (a *Authenticator) tryPasswordLogin(page browser.Page, account *config.AccountConfig) bool {
	if account.Email == "" || account.Password == "" {
		a.logger.Error().Msg("❌ 未提供邮箱密码,无法执行密码登录")
		return false
	}

	a.logger.Info().Msg("🔧 开始尝试邮箱密码登录")
	if err := page.Navigate(a.site.LoginURL(), a.timing.NavigateTimeout); err != nil {
		a.logger.Error().Err(err).Msg("❌ 访问登录页面失败")
		return false
	}

	if err := page.Fill(emailSelector, account.Email, a.timing.LocateTimeout); err != nil {
		a.logger.Error().Err(err).Msg("❌ 填写邮箱失败")
		return false
	}
	if err := page.Fill(passwordSelector, account.Password, a.timing.LocateTimeout); err != nil {
		a.logger.Error().Err(err).Msg("❌ 填写密码失败")
		return false
	}

	a.handleTurnstile(page)

	if err := page.Click(submitSelector, a.timing.LocateTimeout); err != nil {
		a.logger.Error().Err(err).Msg("❌ 提交登录表单失败")
		return false
	}

	if err := page.WaitURLContains(a.site.DashboardPath, a.timing.LoginWaitTimeout); err != nil {
		a.logger.Error().Err(err).Msg("❌ 等待跳转到控制面板超时")
		return false
	}
	if a.isLoginRequired(page) {
		a.logger.Error().Msg("❌ 登录验证失败,请检查账号密码")
		return false
	}
	return true
}

// handleTurnstile 处理Cloudflare Turnstile验证
// 整个步骤尽力而为:任何一步失败只记录警告,继续提交表单
func (a *Authenticator) handleTurnstile(page browser.Page) {
	a.logger.Info().Msg("🔍 检查是否存在Cloudflare验证")

	if err := page.ClickInFrame(turnstileFrameSelector, turnstileCheckboxSelector, a.timing.TurnstileTimeout); err != nil {
		a.logger.Warn().Err(err).Msg("⚠️ Cloudflare验证复选框处理失败,继续尝试登录")
		return
	}
	a.logger.Info().Msg("✅ 已点击Cloudflare验证复选框")

	if err := page.WaitFunc(turnstileTokenJS, a.timing.TokenTimeout); err != nil {
		a.logger.Warn().Err(err).Msg("⚠️ 等待Cloudflare验证令牌超时,继续尝试登录")
		return
	}
	a.logger.Info().Msg("✅ Cloudflare验证通过")
}

func (a *Authenticator) isLoginRequired(page browser.Page) bool {
	return strings.Contains(page.URL(), a.site.LoginPath)
}
