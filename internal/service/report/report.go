package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/LouYuanbo1/hidenrenew/internal/domain/entity"
)

// DefaultPath 运行报告的固定输出路径,每次运行整体覆盖
const DefaultPath = "README.md"

// Generator 把所有续费结果渲染为按账号分组的运行报告
type Generator struct {
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

func InitGenerator(path string, logger zerolog.Logger) *Generator {
	return &Generator{path: path, logger: logger, now: time.Now}
}

// Render 生成报告全文,账号分组保持结果中的首次出现顺序
func (g *Generator) Render(results []*entity.RenewalResult) string {
	groups := orderedmap.New[string, []*entity.RenewalResult]()
	for _, r := range results {
		existing, _ := groups.Get(r.AccountName)
		groups.Set(r.AccountName, append(existing, r))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**最后运行时间**: `%s`\n\n", g.now().Format("2006-01-02 15:04:05"))
	b.WriteString("**运行结果**: <br>\n\n")

	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&b, "### 账号: %s\n\n", pair.Key)
		for _, r := range pair.Value {
			icon, statusText := statusDisplay(r)

			fmt.Fprintf(&b, "🖥️服务器ID：`%s`<br>\n", r.ServerLabel)
			fmt.Fprintf(&b, "📊续期结果：%s%s<br>\n", icon, statusText)
			fmt.Fprintf(&b, "🕛️旧到期时间: `%s`<br>\n", orNA(r.OldDueDate))
			if r.Status == entity.StatusSuccess && r.NewDueDate != "" {
				fmt.Fprintf(&b, "🕡️新到期时间：`%s`<br>\n", r.NewDueDate)
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

// Write 渲染并写入报告文件,写入失败由调用方决定如何记录,不终止进程
func (g *Generator) Write(results []*entity.RenewalResult) error {
	g.logger.Info().Msgf("📝 正在生成运行报告: %s", g.path)
	content := g.Render(results)
	if err := os.WriteFile(g.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}
	g.logger.Info().Msg("✅ 运行报告生成成功")
	return nil
}

func statusDisplay(r *entity.RenewalResult) (icon, text string) {
	switch r.Status {
	case entity.StatusSuccess:
		return "✅", string(entity.StatusSuccess)
	case entity.StatusUnexpired:
		if r.RemainingDays != nil {
			return "ℹ️", fmt.Sprintf("Unexpired(%d天)", *r.RemainingDays)
		}
		return "ℹ️", string(entity.StatusUnexpired)
	default:
		return "❌", string(r.Status)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
