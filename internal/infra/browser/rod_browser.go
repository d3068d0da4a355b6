package browser

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser/options"
)

type rodEngine struct{}

// InitRodEngine 创建rod引擎,每个会话启动一个独立的浏览器进程
func InitRodEngine() Engine {
	return &rodEngine{}
}

func (re *rodEngine) Name() string { return "rod" }

func (re *rodEngine) NewSession(ctx context.Context, opts *SessionOptions) (Session, error) {
	launchOpts := []options.LauncherOption{
		options.WithHeadless(opts.Headless),
		options.WithNoSandbox(true),
		options.WithDisableDevShmUsage(true),
		options.WithDisableBlinkFeatures("AutomationControlled"),
		options.WithWindowSize(fmt.Sprintf("%d,%d", ViewportWidth, ViewportHeight)),
		options.WithUserAgent(DefaultUserAgent),
		options.WithLeakless(true),
	}
	if opts.Proxy != nil {
		launchOpts = append(launchOpts, options.WithProxy(opts.Proxy.Server))
	}

	l := options.CreateLauncher(launchOpts...)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	// 代理需要认证时,由浏览器侧统一应答认证质询
	if opts.Proxy != nil && opts.Proxy.Username != "" {
		go b.HandleAuth(opts.Proxy.Username, opts.Proxy.Password)()
	}

	// stealth页面抹掉webdriver指纹,Turnstile复选框依赖这一步
	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("创建stealth页面失败: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             ViewportWidth,
		Height:            ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("设置视口失败: %w", err)
	}

	return &rodSession{
		browser:  b,
		launcher: l,
		page:     &rodPage{page: page},
	}, nil
}

type rodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rodPage
}

func (rs *rodSession) Page() Page { return rs.page }

func (rs *rodSession) SetCookie(c *Cookie) error {
	sameSite := proto.NetworkCookieSameSiteLax
	switch strings.ToLower(c.SameSite) {
	case "strict":
		sameSite = proto.NetworkCookieSameSiteStrict
	case "none":
		sameSite = proto.NetworkCookieSameSiteNone
	}
	return rs.browser.SetCookies([]*proto.NetworkCookieParam{{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: sameSite,
		Expires:  proto.TimeSinceEpoch(float64(c.Expires.Unix())),
	}})
}

func (rs *rodSession) ClearCookies() error {
	return proto.NetworkClearBrowserCookies{}.Call(rs.page.page)
}

func (rs *rodSession) Close() {
	_ = rs.browser.Close()
	rs.launcher.Kill()
}

type rodPage struct {
	page *rod.Page
}

func (rp *rodPage) Navigate(url string, timeout time.Duration) error {
	p := rp.page.Timeout(timeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("导航失败: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("等待页面加载失败: %w", err)
	}
	return nil
}

func (rp *rodPage) URL() string {
	info, err := rp.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (rp *rodPage) WaitURLContains(fragment string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if strings.Contains(rp.URL(), fragment) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("等待URL包含 %q 超时", fragment)
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func (rp *rodPage) Fill(selector, value string, timeout time.Duration) error {
	el, err := rp.page.Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("查找输入框 %s 失败: %w", selector, err)
	}
	_ = el.SelectAllText()
	if err := el.Input(value); err != nil {
		return fmt.Errorf("填写 %s 失败: %w", selector, err)
	}
	return nil
}

func (rp *rodPage) Click(selector string, timeout time.Duration) error {
	el, err := rp.page.Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("查找元素 %s 失败: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("点击 %s 失败: %w", selector, err)
	}
	return nil
}

func (rp *rodPage) ButtonState(text string, exact bool, timeout time.Duration) (ElementState, error) {
	js := jsButtonState(text, exact)
	if err := rp.page.Timeout(timeout).Wait(rod.Eval(js)); err != nil {
		return ElementMissing, nil
	}
	res, err := rp.page.Eval(js)
	if err != nil {
		return ElementMissing, fmt.Errorf("检查按钮 %q 状态失败: %w", text, err)
	}
	switch res.Value.Int() {
	case 1:
		return ElementDisabled, nil
	case 2:
		return ElementEnabled, nil
	default:
		return ElementMissing, nil
	}
}

func (rp *rodPage) ClickButton(text string, exact bool, timeout time.Duration) error {
	pattern := regexp.QuoteMeta(text)
	if exact {
		pattern = `/^\s*` + pattern + `\s*$/`
	}
	el, err := rp.page.Timeout(timeout).ElementR("button", pattern)
	if err != nil {
		return fmt.Errorf("查找按钮 %q 失败: %w", text, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("点击按钮 %q 失败: %w", text, err)
	}
	return nil
}

func (rp *rodPage) BodyText() (string, error) {
	res, err := rp.page.Eval(`() => document.body ? document.body.innerText : ''`)
	if err != nil {
		return "", fmt.Errorf("读取页面文本失败: %w", err)
	}
	return res.Value.Str(), nil
}

func (rp *rodPage) LabelContainerText(label string, timeout time.Duration) (string, error) {
	js := jsLabelContainerText(label)
	if err := rp.page.Timeout(timeout).Wait(rod.Eval(js)); err != nil {
		return "", fmt.Errorf("标签 %q 未出现: %w", label, err)
	}
	res, err := rp.page.Eval(js)
	if err != nil {
		return "", fmt.Errorf("读取标签 %q 容器文本失败: %w", label, err)
	}
	return res.Value.Str(), nil
}

func (rp *rodPage) WaitFunc(js string, timeout time.Duration) error {
	if err := rp.page.Timeout(timeout).Wait(rod.Eval(js)); err != nil {
		return fmt.Errorf("等待条件超时: %w", err)
	}
	return nil
}

func (rp *rodPage) ClickInFrame(frameSelector, selector string, timeout time.Duration) error {
	iframeEl, err := rp.page.Timeout(timeout).Element(frameSelector)
	if err != nil {
		return fmt.Errorf("查找iframe %s 失败: %w", frameSelector, err)
	}
	frame, err := iframeEl.Frame()
	if err != nil {
		return fmt.Errorf("进入iframe失败: %w", err)
	}
	el, err := frame.Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("在iframe中查找 %s 失败: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("等待iframe中 %s 可见失败: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("点击iframe中 %s 失败: %w", selector, err)
	}
	return nil
}
