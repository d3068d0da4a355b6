// Package browsertest 提供脚本化的Page/Session/Engine假实现
// 服务层测试依赖它模拟站点的各种页面状态,不需要真实浏览器
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser"
)

// FakePage 可脚本化的页面实现
// 每个方法都有可覆盖的钩子函数,未设置时走默认行为;所有调用都会被记录
type FakePage struct {
	Calls      []string
	CurrentURL string

	NavigateFn     func(url string) error
	WaitURLFn      func(fragment string) error
	FillFn         func(selector, value string) error
	ClickFn        func(selector string) error
	ButtonStateFn  func(text string, exact bool) (browser.ElementState, error)
	ClickButtonFn  func(text string, exact bool) error
	BodyTextFn     func() (string, error)
	LabelTextFn    func(label string) (string, error)
	WaitFuncFn     func(js string) error
	ClickInFrameFn func(frameSelector, selector string) error
}

func (fp *FakePage) record(format string, args ...interface{}) {
	fp.Calls = append(fp.Calls, fmt.Sprintf(format, args...))
}

// Called 判断是否发生过包含子串的调用
func (fp *FakePage) Called(fragment string) bool {
	for _, c := range fp.Calls {
		if strings.Contains(c, fragment) {
			return true
		}
	}
	return false
}

func (fp *FakePage) Navigate(url string, _ time.Duration) error {
	fp.record("Navigate(%s)", url)
	if fp.NavigateFn != nil {
		return fp.NavigateFn(url)
	}
	fp.CurrentURL = url
	return nil
}

func (fp *FakePage) URL() string {
	return fp.CurrentURL
}

func (fp *FakePage) WaitURLContains(fragment string, _ time.Duration) error {
	fp.record("WaitURLContains(%s)", fragment)
	if fp.WaitURLFn != nil {
		return fp.WaitURLFn(fragment)
	}
	if strings.Contains(fp.CurrentURL, fragment) {
		return nil
	}
	return fmt.Errorf("等待URL包含 %q 超时", fragment)
}

func (fp *FakePage) Fill(selector, value string, _ time.Duration) error {
	fp.record("Fill(%s)", selector)
	if fp.FillFn != nil {
		return fp.FillFn(selector, value)
	}
	return nil
}

func (fp *FakePage) Click(selector string, _ time.Duration) error {
	fp.record("Click(%s)", selector)
	if fp.ClickFn != nil {
		return fp.ClickFn(selector)
	}
	return nil
}

func (fp *FakePage) ButtonState(text string, exact bool, _ time.Duration) (browser.ElementState, error) {
	fp.record("ButtonState(%s)", text)
	if fp.ButtonStateFn != nil {
		return fp.ButtonStateFn(text, exact)
	}
	return browser.ElementMissing, nil
}

func (fp *FakePage) ClickButton(text string, exact bool, _ time.Duration) error {
	fp.record("ClickButton(%s)", text)
	if fp.ClickButtonFn != nil {
		return fp.ClickButtonFn(text, exact)
	}
	return nil
}

func (fp *FakePage) BodyText() (string, error) {
	fp.record("BodyText()")
	if fp.BodyTextFn != nil {
		return fp.BodyTextFn()
	}
	return "", nil
}

func (fp *FakePage) LabelContainerText(label string, _ time.Duration) (string, error) {
	fp.record("LabelContainerText(%s)", label)
	if fp.LabelTextFn != nil {
		return fp.LabelTextFn(label)
	}
	return "", fmt.Errorf("标签 %q 未出现", label)
}

func (fp *FakePage) WaitFunc(js string, _ time.Duration) error {
	fp.record("WaitFunc()")
	if fp.WaitFuncFn != nil {
		return fp.WaitFuncFn(js)
	}
	return nil
}

func (fp *FakePage) ClickInFrame(frameSelector, selector string, _ time.Duration) error {
	fp.record("ClickInFrame(%s)", frameSelector)
	if fp.ClickInFrameFn != nil {
		return fp.ClickInFrameFn(frameSelector, selector)
	}
	return nil
}

// FakeSession 记录Cookie操作的会话假实现
type FakeSession struct {
	FakePage    *FakePage
	Cookies     []*browser.Cookie
	Cleared     bool
	Closed      bool
	SetCookieFn func(c *browser.Cookie) error
}

func NewFakeSession(page *FakePage) *FakeSession {
	if page == nil {
		page = &FakePage{}
	}
	return &FakeSession{FakePage: page}
}

func (fs *FakeSession) Page() browser.Page { return fs.FakePage }

func (fs *FakeSession) SetCookie(c *browser.Cookie) error {
	if fs.SetCookieFn != nil {
		return fs.SetCookieFn(c)
	}
	fs.Cookies = append(fs.Cookies, c)
	return nil
}

func (fs *FakeSession) ClearCookies() error {
	fs.Cleared = true
	fs.Cookies = nil
	return nil
}

func (fs *FakeSession) Close() {
	fs.Closed = true
}

// FakeEngine 按账号顺序分发预置会话的引擎假实现
type FakeEngine struct {
	NewSessionFn func(opts *browser.SessionOptions) (browser.Session, error)
	Sessions     []*FakeSession
}

func (fe *FakeEngine) Name() string { return "fake" }

func (fe *FakeEngine) NewSession(_ context.Context, opts *browser.SessionOptions) (browser.Session, error) {
	if fe.NewSessionFn != nil {
		return fe.NewSessionFn(opts)
	}
	sess := NewFakeSession(nil)
	fe.Sessions = append(fe.Sessions, sess)
	return sess, nil
}
