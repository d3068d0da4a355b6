package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

type chromedpEngine struct{}

// InitChromedpEngine 创建chromedp引擎,作为rod之外的备选实现
func InitChromedpEngine() Engine {
	return &chromedpEngine{}
}

func (ce *chromedpEngine) Name() string { return "chromedp" }

func (ce *chromedpEngine) NewSession(ctx context.Context, opts *SessionOptions) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(DefaultUserAgent),
		chromedp.WindowSize(ViewportWidth, ViewportHeight),
	)
	if opts.Proxy != nil {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy.Server))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	pageCtx, cancelPage := chromedp.NewContext(allocCtx)

	// 先空跑一次,让浏览器进程真正启动
	if err := chromedp.Run(pageCtx); err != nil {
		cancelPage()
		cancelAlloc()
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	// 带认证的代理需要fetch域应答认证质询
	if opts.Proxy != nil && opts.Proxy.Username != "" {
		if err := enableProxyAuth(pageCtx, opts.Proxy); err != nil {
			cancelPage()
			cancelAlloc()
			return nil, err
		}
	}

	return &chromedpSession{
		pageCtx:     pageCtx,
		cancelPage:  cancelPage,
		cancelAlloc: cancelAlloc,
		page:        &chromedpPage{ctx: pageCtx},
	}, nil
}

func enableProxyAuth(ctx context.Context, proxy *ProxyOption) error {
	if err := chromedp.Run(ctx, fetch.Enable().WithHandleAuthRequests(true)); err != nil {
		return fmt.Errorf("开启fetch认证处理失败: %w", err)
	}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *fetch.EventAuthRequired:
			go func() {
				execCtx := cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Target)
				resp := &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: proxy.Username,
					Password: proxy.Password,
				}
				_ = fetch.ContinueWithAuth(ev.RequestID, resp).Do(execCtx)
			}()
		case *fetch.EventRequestPaused:
			go func() {
				execCtx := cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Target)
				_ = fetch.ContinueRequest(ev.RequestID).Do(execCtx)
			}()
		}
	})
	return nil
}

type chromedpSession struct {
	pageCtx     context.Context
	cancelPage  context.CancelFunc
	cancelAlloc context.CancelFunc
	page        *chromedpPage
}

func (cs *chromedpSession) Page() Page { return cs.page }

func (cs *chromedpSession) SetCookie(c *Cookie) error {
	sameSite := network.CookieSameSiteLax
	switch strings.ToLower(c.SameSite) {
	case "strict":
		sameSite = network.CookieSameSiteStrict
	case "none":
		sameSite = network.CookieSameSiteNone
	}
	expires := cdp.TimeSinceEpoch(c.Expires)
	return chromedp.Run(cs.pageCtx,
		network.SetCookie(c.Name, c.Value).
			WithDomain(c.Domain).
			WithPath(c.Path).
			WithSecure(c.Secure).
			WithHTTPOnly(c.HTTPOnly).
			WithSameSite(sameSite).
			WithExpires(&expires),
	)
}

func (cs *chromedpSession) ClearCookies() error {
	return chromedp.Run(cs.pageCtx, network.ClearBrowserCookies())
}

func (cs *chromedpSession) Close() {
	cs.cancelPage()
	cs.cancelAlloc()
}

type chromedpPage struct {
	ctx context.Context
}

func (cp *chromedpPage) Navigate(url string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(cp.ctx, timeout)
	defer cancel()
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("导航失败: %w", err)
	}
	return nil
}

func (cp *chromedpPage) URL() string {
	var u string
	tctx, cancel := context.WithTimeout(cp.ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Location(&u)); err != nil {
		return ""
	}
	return u
}

func (cp *chromedpPage) WaitURLContains(fragment string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if strings.Contains(cp.URL(), fragment) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("等待URL包含 %q 超时", fragment)
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func (cp *chromedpPage) Fill(selector, value string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(cp.ctx, timeout)
	defer cancel()
	err := chromedp.Run(tctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("填写 %s 失败: %w", selector, err)
	}
	return nil
}

func (cp *chromedpPage) Click(selector string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(cp.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Click(selector, chromedp.NodeVisible, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("点击 %s 失败: %w", selector, err)
	}
	return nil
}

func (cp *chromedpPage) ButtonState(text string, exact bool, timeout time.Duration) (ElementState, error) {
	var state int
	err := chromedp.Run(cp.ctx,
		chromedp.PollFunction(jsButtonState(text, exact), &state, chromedp.WithPollingTimeout(timeout)),
	)
	if err != nil {
		// 轮询超时说明按钮始终没有出现
		return ElementMissing, nil
	}
	switch state {
	case 1:
		return ElementDisabled, nil
	case 2:
		return ElementEnabled, nil
	default:
		return ElementMissing, nil
	}
}

func (cp *chromedpPage) ClickButton(text string, exact bool, timeout time.Duration) error {
	var xp string
	if exact {
		xp = fmt.Sprintf(`//button[normalize-space(.)=%q]`, text)
	} else {
		xp = fmt.Sprintf(`//button[contains(normalize-space(.), %q)]`, text)
	}
	tctx, cancel := context.WithTimeout(cp.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Click(xp, chromedp.NodeVisible, chromedp.BySearch)); err != nil {
		return fmt.Errorf("点击按钮 %q 失败: %w", text, err)
	}
	return nil
}

func (cp *chromedpPage) BodyText() (string, error) {
	var txt string
	tctx, cancel := context.WithTimeout(cp.ctx, 10*time.Second)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Text("body", &txt, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("读取页面文本失败: %w", err)
	}
	return txt, nil
}

func (cp *chromedpPage) LabelContainerText(label string, timeout time.Duration) (string, error) {
	var txt string
	err := chromedp.Run(cp.ctx,
		chromedp.PollFunction(jsLabelContainerText(label), &txt, chromedp.WithPollingTimeout(timeout)),
	)
	if err != nil {
		return "", fmt.Errorf("标签 %q 未出现: %w", label, err)
	}
	return txt, nil
}

func (cp *chromedpPage) WaitFunc(js string, timeout time.Duration) error {
	err := chromedp.Run(cp.ctx,
		chromedp.PollFunction(js, nil, chromedp.WithPollingTimeout(timeout)),
	)
	if err != nil {
		return fmt.Errorf("等待条件超时: %w", err)
	}
	return nil
}

// ClickInFrame chromedp无法直接操作跨域iframe内部的节点,
// 退化为计算iframe内复选框的屏幕坐标后按坐标点击
func (cp *chromedpPage) ClickInFrame(frameSelector, selector string, timeout time.Duration) error {
	js := fmt.Sprintf(`() => {
		const f = document.querySelector(%q);
		if (!f) return null;
		const r = f.getBoundingClientRect();
		if (r.width === 0 || r.height === 0) return null;
		return [r.left + 30, r.top + r.height / 2];
	}`, frameSelector)

	var point []float64
	err := chromedp.Run(cp.ctx,
		chromedp.PollFunction(js, &point, chromedp.WithPollingTimeout(timeout)),
	)
	if err != nil {
		return fmt.Errorf("查找iframe %s 失败: %w", frameSelector, err)
	}
	if len(point) != 2 {
		return fmt.Errorf("iframe %s 坐标无效", frameSelector)
	}
	tctx, cancel := context.WithTimeout(cp.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.MouseClickXY(point[0], point[1])); err != nil {
		return fmt.Errorf("点击iframe %s 失败: %w", frameSelector, err)
	}
	return nil
}
