package config

import "fmt"

// ProxyConfig 单个账号使用的代理配置
// Server形如 http://1.2.3.4:8080 或 socks5://1.2.3.4:1080
type ProxyConfig struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ServerTarget 一台待续费服务器的管理页面信息
type ServerTarget struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Label 报告中展示的服务器标签,形如 name(id)
func (s *ServerTarget) Label() string {
	name := s.Name
	if name == "" {
		name = fmt.Sprintf("服务器%s", s.ID)
	}
	return fmt.Sprintf("%s(%s)", name, s.ID)
}

// AccountConfig 单个账号的完整配置
// cookie 和 email+password 至少提供一种,二者都有时优先使用cookie登录
type AccountConfig struct {
	Name     string         `json:"name"`
	Cookie   string         `json:"cookie"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Proxy    *ProxyConfig   `json:"proxy"`
	Servers  []ServerTarget `json:"servers"`
}

// Validate 校验账号配置的完整性,在启动任何浏览器之前调用
func (a *AccountConfig) Validate() error {
	name := a.DisplayName()
	if a.Cookie == "" && (a.Email == "" || a.Password == "") {
		return fmt.Errorf("账号 %s 必须提供 cookie 或 email+password", name)
	}
	if len(a.Servers) == 0 {
		return fmt.Errorf("账号 %s 未配置服务器列表", name)
	}
	for i := range a.Servers {
		if a.Servers[i].URL == "" {
			return fmt.Errorf("账号 %s 第 %d 个服务器缺少url", name, i+1)
		}
	}
	return nil
}

// DisplayName 日志和报告中使用的账号名
func (a *AccountConfig) DisplayName() string {
	if a.Name == "" {
		return "Unknown"
	}
	return a.Name
}
