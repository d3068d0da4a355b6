package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// AccountsEnv 存放账号JSON数组的环境变量
const AccountsEnv = "HIDENCLOUD_ACCOUNTS"

// EngineEnv 浏览器引擎选择,可选 rod(默认) 或 chromedp
const EngineEnv = "RENEW_ENGINE"

// ParseAccounts 解析账号JSON数组并逐个校验
// 任何一个账号配置不完整都视为致命错误,在启动浏览器之前直接失败
func ParseAccounts(data []byte) ([]*AccountConfig, error) {
	var accounts []*AccountConfig
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("账号配置JSON解析失败: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("账号配置为空")
	}
	for _, account := range accounts {
		if err := account.Validate(); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

// LoadAccountsFromEnv 从环境变量读取并解析账号配置
func LoadAccountsFromEnv() ([]*AccountConfig, error) {
	raw := os.Getenv(AccountsEnv)
	if raw == "" {
		return nil, fmt.Errorf("未设置环境变量 %s", AccountsEnv)
	}
	return ParseAccounts([]byte(raw))
}

// ResolveHeadless 决定浏览器运行模式
// CI环境(GITHUB_ACTIONS)强制无头;否则由HEADLESS控制,默认无头
func ResolveHeadless(lookup func(string) string) bool {
	if lookup("GITHUB_ACTIONS") == "true" {
		return true
	}
	headless := strings.ToLower(lookup("HEADLESS"))
	if headless == "" {
		return true
	}
	return headless == "true"
}

// ResolveEngine 决定使用的浏览器引擎名称
func ResolveEngine(lookup func(string) string) string {
	engine := strings.ToLower(lookup(EngineEnv))
	if engine == "chromedp" {
		return "chromedp"
	}
	return "rod"
}
