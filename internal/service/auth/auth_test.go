package auth

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouYuanbo1/hidenrenew/internal/config"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser/browsertest"
	"github.com/LouYuanbo1/hidenrenew/param"
)

func newAuthenticator() *Authenticator {
	return InitAuthenticator(param.DefaultSite(), &param.Timing{}, zerolog.Nop())
}

func TestCookieLoginSuccess(t *testing.T) {
	page := &browsertest.FakePage{}
	sess := browsertest.NewFakeSession(page)
	account := &config.AccountConfig{Name: "A", Cookie: "valid-token"}

	ok := newAuthenticator().Login(sess, account)
	require.True(t, ok)

	// 注入了站点固定的记住登录Cookie
	require.Len(t, sess.Cookies, 1)
	assert.Equal(t, "remember_web_59ba36addc2b2f9401580f014c7f58ea4e30989d", sess.Cookies[0].Name)
	assert.Equal(t, "dash.hidencloud.com", sess.Cookies[0].Domain)
	assert.Equal(t, "valid-token", sess.Cookies[0].Value)
	assert.True(t, sess.Cookies[0].HTTPOnly)
	assert.True(t, sess.Cookies[0].Secure)

	// Cookie有效时不应进入密码登录流程
	assert.False(t, page.Called("Fill("))
	assert.False(t, sess.Cleared)
}

func TestCookieLoginRejectedFallsThrough(t *testing.T) {
	site := param.DefaultSite()
	page := &browsertest.FakePage{}
	// 带着失效Cookie访问dashboard会被重定向回登录页
	page.NavigateFn = func(url string) error {
		if url == site.DashboardURL() {
			page.CurrentURL = site.LoginURL()
			return nil
		}
		page.CurrentURL = url
		return nil
	}
	sess := browsertest.NewFakeSession(page)
	account := &config.AccountConfig{Name: "A", Cookie: "stale-token", Email: "a@example.com", Password: "secret"}

	ok := newAuthenticator().Login(sess, account)

	// Cookie被清除,随后尝试了密码登录(此处表单提交后没有跳转,整体失败)
	assert.True(t, sess.Cleared)
	assert.True(t, page.Called(fmt.Sprintf("Fill(%s)", emailSelector)))
	assert.True(t, page.Called(fmt.Sprintf("Fill(%s)", passwordSelector)))
	assert.False(t, ok)
}

func TestPasswordLoginSuccess(t *testing.T) {
	site := param.DefaultSite()
	page := &browsertest.FakePage{}
	page.WaitURLFn = func(fragment string) error {
		// 表单提交后站点跳转到控制面板
		page.CurrentURL = site.DashboardURL()
		return nil
	}
	sess := browsertest.NewFakeSession(page)
	account := &config.AccountConfig{Name: "B", Email: "b@example.com", Password: "secret"}

	ok := newAuthenticator().Login(sess, account)
	require.True(t, ok)

	// 没有Cookie时直接走密码登录
	assert.Empty(t, sess.Cookies)
	assert.True(t, page.Called(fmt.Sprintf("Click(%s)", submitSelector)))
}

func TestPasswordLoginTimeout(t *testing.T) {
	page := &browsertest.FakePage{}
	page.WaitURLFn = func(fragment string) error {
		return fmt.Errorf("等待URL包含 %q 超时", fragment)
	}
	sess := browsertest.NewFakeSession(page)
	account := &config.AccountConfig{Name: "B", Email: "b@example.com", Password: "wrong"}

	ok := newAuthenticator().Login(sess, account)
	assert.False(t, ok)
}

func TestTurnstileFailureIsNotFatal(t *testing.T) {
	site := param.DefaultSite()
	page := &browsertest.FakePage{}
	page.ClickInFrameFn = func(frameSelector, selector string) error {
		return fmt.Errorf("查找iframe %s 失败", frameSelector)
	}
	page.WaitURLFn = func(fragment string) error {
		page.CurrentURL = site.DashboardURL()
		return nil
	}
	sess := browsertest.NewFakeSession(page)
	account := &config.AccountConfig{Name: "C", Email: "c@example.com", Password: "secret"}

	// Turnstile步骤尽力而为,失败后仍然提交表单并成功登录
	ok := newAuthenticator().Login(sess, account)
	require.True(t, ok)
	assert.True(t, page.Called(fmt.Sprintf("Click(%s)", submitSelector)))
}

func TestNoAuthMaterialFails(t *testing.T) {
	page := &browsertest.FakePage{}
	sess := browsertest.NewFakeSession(page)
	account := &config.AccountConfig{Name: "D"}

	ok := newAuthenticator().Login(sess, account)
	assert.False(t, ok)
	assert.Empty(t, sess.Cookies)
}
