package browser

import (
	"context"
	"fmt"
	"time"
)

// ElementState 定位控件后的三种结果,续费状态机据此走不同分支
type ElementState int

const (
	ElementMissing ElementState = iota
	ElementDisabled
	ElementEnabled
)

// Cookie 注入到会话中的登录Cookie
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// ProxyOption 会话级代理,在浏览器启动时生效
type ProxyOption struct {
	Server   string
	Username string
	Password string
}

// SessionOptions 创建会话时的启动参数
type SessionOptions struct {
	Headless bool
	Proxy    *ProxyOption
}

// DefaultUserAgent 与站点前端兼容性最好的UA,全部会话统一使用
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ViewportWidth/ViewportHeight 会话窗口尺寸
const (
	ViewportWidth  = 1920
	ViewportHeight = 1080
)

// Page 单个浏览器页面上的操作能力
// 所有阻塞操作都带显式超时,超时或未找到以error返回,不在内部panic
type Page interface {
	Navigate(url string, timeout time.Duration) error
	URL() string
	WaitURLContains(fragment string, timeout time.Duration) error
	Fill(selector, value string, timeout time.Duration) error
	Click(selector string, timeout time.Duration) error
	ButtonState(text string, exact bool, timeout time.Duration) (ElementState, error)
	ClickButton(text string, exact bool, timeout time.Duration) error
	BodyText() (string, error)
	LabelContainerText(label string, timeout time.Duration) (string, error)
	WaitFunc(js string, timeout time.Duration) error
	ClickInFrame(frameSelector, selector string, timeout time.Duration) error
}

// Session 一个账号独占的浏览器身份(Cookie、存储、代理)
// 会话与账号一一对应,从创建到Close之间不跨账号共享
type Session interface {
	Page() Page
	SetCookie(c *Cookie) error
	ClearCookies() error
	Close()
}

// Engine 浏览器引擎,负责按会话参数启动独立的浏览器实例
type Engine interface {
	Name() string
	NewSession(ctx context.Context, opts *SessionOptions) (Session, error)
}

// jsButtonState 按文本查找button并返回其状态: 0未找到 1禁用 2可点击
// 两个引擎实现共用,保证状态判定口径一致
func jsButtonState(text string, exact bool) string {
	return fmt.Sprintf(`() => {
		const want = %q;
		const exact = %t;
		const buttons = Array.from(document.querySelectorAll('button'));
		const match = buttons.find(b => {
			const t = (b.innerText || '').trim();
			if (!(exact ? t === want : t.includes(want))) return false;
			return b.offsetParent !== null;
		});
		if (!match) return 0;
		return match.disabled ? 1 : 2;
	}`, text, exact)
}

// jsLabelContainerText 定位文本标签并返回其父容器的完整文本
func jsLabelContainerText(label string) string {
	return fmt.Sprintf(`() => {
		const xpath = '//*[normalize-space(text())=%q]';
		const found = document.evaluate(xpath, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
		const el = found.singleNodeValue;
		if (!el || !el.parentElement) return '';
		return el.parentElement.innerText || '';
	}`, label)
}
