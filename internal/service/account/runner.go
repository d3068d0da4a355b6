package account

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/LouYuanbo1/hidenrenew/internal/config"
	"github.com/LouYuanbo1/hidenrenew/internal/domain/entity"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser"
	"github.com/LouYuanbo1/hidenrenew/internal/service/auth"
	"github.com/LouYuanbo1/hidenrenew/internal/service/renewal"
	"github.com/LouYuanbo1/hidenrenew/param"
)

// Runner 负责单个账号的完整处理流水线
// 独占一个浏览器会话:启动(带代理) → 登录 → 顺序处理服务器列表 → 关闭会话
// 同一账号的所有服务器共享同一个页面,因此服务器之间严格串行
type Runner struct {
	engine   browser.Engine
	account  *config.AccountConfig
	headless bool
	auth     *auth.Authenticator
	executor *renewal.Executor
	logger   zerolog.Logger
}

func InitRunner(
	engine browser.Engine,
	account *config.AccountConfig,
	headless bool,
	site *param.Site,
	timing *param.Timing,
	logger zerolog.Logger,
) *Runner {
	return &Runner{
		engine:   engine,
		account:  account,
		headless: headless,
		auth:     auth.InitAuthenticator(site, timing, logger),
		executor: renewal.InitExecutor(site, timing, logger),
		logger:   logger,
	}
}

// ProcessAllServers 处理该账号下的所有服务器
// 登录失败时返回空结果集,不影响其他账号
func (r *Runner) ProcessAllServers(ctx context.Context) []*entity.RenewalResult {
	name := r.account.DisplayName()
	r.logger.Info().Msgf("🚀 开始处理账号,共 %d 个服务器", len(r.account.Servers))

	opts := &browser.SessionOptions{Headless: r.headless}
	if r.account.Proxy != nil {
		r.logger.Info().Msgf("🌐 使用代理: %s", r.account.Proxy.Server)
		opts.Proxy = &browser.ProxyOption{
			Server:   r.account.Proxy.Server,
			Username: r.account.Proxy.Username,
			Password: r.account.Proxy.Password,
		}
	}

	sess, err := r.engine.NewSession(ctx, opts)
	if err != nil {
		r.logger.Error().Err(err).Msg("❌ 浏览器会话创建失败")
		return nil
	}
	defer sess.Close()
	r.logger.Info().Msg("✅ 浏览器会话创建成功")

	if !r.auth.Login(sess, r.account) {
		return nil
	}

	results := make([]*entity.RenewalResult, 0, len(r.account.Servers))
	for i := range r.account.Servers {
		results = append(results, r.executor.Process(sess.Page(), name, &r.account.Servers[i]))
	}
	return results
}
