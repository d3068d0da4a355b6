package orchestrator

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouYuanbo1/hidenrenew/internal/config"
	"github.com/LouYuanbo1/hidenrenew/internal/domain/entity"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser/browsertest"
	"github.com/LouYuanbo1/hidenrenew/param"
)

func newOrchestrator(engine browser.Engine) *Orchestrator {
	return InitOrchestrator(engine, true, param.DefaultSite(), &param.Timing{}, zerolog.Nop())
}

func testAccount(name, proxy string) *config.AccountConfig {
	acct := &config.AccountConfig{
		Name:   name,
		Cookie: "token-" + name,
		Servers: []config.ServerTarget{
			{ID: "1", URL: "https://dash.hidencloud.com/service/1/manage"},
		},
	}
	if proxy != "" {
		acct.Proxy = &config.ProxyConfig{Server: proxy}
	}
	return acct
}

func TestRunPartialSuccess(t *testing.T) {
	site := param.DefaultSite()
	var sessions []*browsertest.FakeSession
	engine := &browsertest.FakeEngine{}
	// 带代理的账号模拟Cookie失效:访问控制面板被重定向回登录页
	engine.NewSessionFn = func(opts *browser.SessionOptions) (browser.Session, error) {
		page := &browsertest.FakePage{}
		if opts.Proxy != nil {
			page.NavigateFn = func(url string) error {
				if url == site.DashboardURL() {
					page.CurrentURL = site.LoginURL()
					return nil
				}
				page.CurrentURL = url
				return nil
			}
		} else {
			page.ButtonStateFn = func(text string, exact bool) (browser.ElementState, error) {
				return browser.ElementDisabled, nil
			}
		}
		sess := browsertest.NewFakeSession(page)
		sessions = append(sessions, sess)
		return sess, nil
	}

	accounts := []*config.AccountConfig{
		testAccount("账号A", ""),
		testAccount("账号B", ""),
		testAccount("账号C", "http://127.0.0.1:8080"),
	}

	results := newOrchestrator(engine).Run(context.Background(), accounts)

	// 登录失败的账号不产生结果,其余账号各贡献一条
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, entity.StatusNotNeeded, r.Status)
	}

	// 部分成功仍然视为正常退出
	assert.Equal(t, 2, SuccessCount(results))
	assert.Equal(t, 0, ExitCode(results))

	// 每个账号的会话在任务结束后都被关闭
	require.Len(t, sessions, 3)
	for _, sess := range sessions {
		assert.True(t, sess.Closed)
	}
}

func TestRunAllFailed(t *testing.T) {
	// 默认假页面上找不到Renew按钮,所有服务器都以Failed收场
	engine := &browsertest.FakeEngine{}

	accounts := []*config.AccountConfig{testAccount("账号A", "")}
	results := newOrchestrator(engine).Run(context.Background(), accounts)

	require.Len(t, results, 1)
	assert.Equal(t, entity.StatusFailed, results[0].Status)
	assert.Equal(t, 0, SuccessCount(results))
	assert.Equal(t, 1, ExitCode(results))
}

func TestRunSessionCreationFailure(t *testing.T) {
	engine := &browsertest.FakeEngine{}
	engine.NewSessionFn = func(opts *browser.SessionOptions) (browser.Session, error) {
		return nil, assert.AnError
	}

	results := newOrchestrator(engine).Run(context.Background(), []*config.AccountConfig{testAccount("账号A", "")})
	assert.Empty(t, results)
	assert.Equal(t, 0, ExitCode(results))
}

func TestExitCode(t *testing.T) {
	success := &entity.RenewalResult{Status: entity.StatusSuccess}
	unexpired := &entity.RenewalResult{Status: entity.StatusUnexpired}
	notNeeded := &entity.RenewalResult{Status: entity.StatusNotNeeded}
	failed := &entity.RenewalResult{Status: entity.StatusFailed}
	unknown := &entity.RenewalResult{Status: entity.StatusUnknown}

	tests := []struct {
		name    string
		results []*entity.RenewalResult
		want    int
	}{
		{"空结果集", nil, 0},
		{"全部成功", []*entity.RenewalResult{success, success}, 0},
		{"未到期视为成功", []*entity.RenewalResult{unexpired, notNeeded}, 0},
		{"部分成功", []*entity.RenewalResult{success, failed, unknown}, 0},
		{"全部失败", []*entity.RenewalResult{failed, unknown}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.results))
		})
	}
}
