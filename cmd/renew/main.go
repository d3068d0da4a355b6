package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/LouYuanbo1/hidenrenew/internal/config"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser"
	"github.com/LouYuanbo1/hidenrenew/internal/service/orchestrator"
	"github.com/LouYuanbo1/hidenrenew/internal/service/report"
	"github.com/LouYuanbo1/hidenrenew/param"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 日志在任何工作协程启动前配置一次,此后不再变更
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	logger.Info().Msg("🚀 开始执行HidenCloud多账号自动续费")

	accounts, err := config.LoadAccountsFromEnv()
	if err != nil {
		logger.Error().Err(err).Msg("💥 加载账号配置失败")
		return 1
	}
	logger.Info().Msgf("✅ 成功加载 %d 个账号配置", len(accounts))

	headless := config.ResolveHeadless(os.Getenv)
	if headless {
		logger.Info().Msg("💻 使用无头模式运行(适合CI/CD环境)")
	} else {
		logger.Info().Msg("🖥️ 使用有界面模式运行(适合本地调试)")
	}

	var engine browser.Engine
	switch config.ResolveEngine(os.Getenv) {
	case "chromedp":
		engine = browser.InitChromedpEngine()
	default:
		engine = browser.InitRodEngine()
	}
	logger.Info().Msgf("🧭 浏览器引擎: %s", engine.Name())

	orch := orchestrator.InitOrchestrator(engine, headless, param.DefaultSite(), param.DefaultTiming(), logger)
	results := orch.Run(context.Background(), accounts)

	generator := report.InitGenerator(report.DefaultPath, logger)
	if err := generator.Write(results); err != nil {
		logger.Warn().Err(err).Msg("⚠️ 生成运行报告失败")
	}

	success := orchestrator.SuccessCount(results)
	logger.Info().Msgf("📊 任务完成统计: 成功/总数 = %d/%d", success, len(results))

	code := orchestrator.ExitCode(results)
	if code != 0 {
		logger.Error().Msg("❌ 所有服务器处理失败")
	} else if success < len(results) {
		logger.Warn().Msgf("⚠️ 部分服务器处理失败: %d/%d", len(results)-success, len(results))
	} else {
		logger.Info().Msg("🎉 所有服务器处理成功")
	}
	return code
}
