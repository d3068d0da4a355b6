package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/LouYuanbo1/hidenrenew/internal/config"
	"github.com/LouYuanbo1/hidenrenew/internal/domain/entity"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser"
	"github.com/LouYuanbo1/hidenrenew/internal/service/account"
	"github.com/LouYuanbo1/hidenrenew/param"
)

// MaxConcurrentAccounts 同时运行的浏览器会话上限,避免资源占用过高
const MaxConcurrentAccounts = 3

// Orchestrator 并发调度所有账号的处理任务
// 每个账号独占自己的会话与结果集,唯一的共享结构是汇总切片,在任务完成后加锁追加
type Orchestrator struct {
	engine   browser.Engine
	headless bool
	site     *param.Site
	timing   *param.Timing
	logger   zerolog.Logger
}

func InitOrchestrator(
	engine browser.Engine,
	headless bool,
	site *param.Site,
	timing *param.Timing,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		engine:   engine,
		headless: headless,
		site:     site,
		timing:   timing,
		logger:   logger,
	}
}

// Run 并发处理所有账号并返回汇总结果,账号间完成顺序不保证
func (o *Orchestrator) Run(ctx context.Context, accounts []*config.AccountConfig) []*entity.RenewalResult {
	workers := min(len(accounts), MaxConcurrentAccounts)
	o.logger.Info().Msgf("🔄 开始并发处理 %d 个账号(最大并发数: %d)", len(accounts), workers)

	var mu sync.Mutex
	var all []*entity.RenewalResult

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, acct := range accounts {
		g.Go(func() error {
			name := acct.DisplayName()
			logger := o.logger.With().Str("account", name).Logger()

			runner := account.InitRunner(o.engine, acct, o.headless, o.site, o.timing, logger)
			results := runner.ProcessAllServers(ctx)

			mu.Lock()
			all = append(all, results...)
			mu.Unlock()

			logger.Info().Msgf("✅ 账号处理完成,共 %d 个服务器结果", len(results))
			return nil
		})
	}
	_ = g.Wait()
	return all
}

// SuccessCount 统计视为成功的结果数量
func SuccessCount(results []*entity.RenewalResult) int {
	count := 0
	for _, r := range results {
		if r.Status.Succeeded() {
			count++
		}
	}
	return count
}

// ExitCode 计算进程退出码
// 部分成功仍然返回0,只有非空结果集中零成功才返回1
func ExitCode(results []*entity.RenewalResult) int {
	if len(results) > 0 && SuccessCount(results) == 0 {
		return 1
	}
	return 0
}
