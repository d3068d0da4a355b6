package renewal

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouYuanbo1/hidenrenew/internal/config"
	"github.com/LouYuanbo1/hidenrenew/internal/domain/entity"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser"
	"github.com/LouYuanbo1/hidenrenew/internal/infra/browser/browsertest"
	"github.com/LouYuanbo1/hidenrenew/param"
)

const serverURL = "https://dash.hidencloud.com/service/1001/manage"

var testServer = &config.ServerTarget{ID: "1001", URL: serverURL, Name: "主服务器"}

// newExecutor 零值Timing跳过所有静置等待,测试无需真实浏览器
func newExecutor() *Executor {
	return InitExecutor(param.DefaultSite(), &param.Timing{}, zerolog.Nop())
}

func TestNavigateFailure(t *testing.T) {
	page := &browsertest.FakePage{}
	page.NavigateFn = func(url string) error { return fmt.Errorf("导航失败") }

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusFailed, result.Status)
	assert.Equal(t, "主服务器(1001)", result.ServerLabel)
}

func TestRenewButtonMissing(t *testing.T) {
	page := &browsertest.FakePage{}

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusFailed, result.Status)
}

func TestRenewButtonDisabled(t *testing.T) {
	page := &browsertest.FakePage{}
	page.ButtonStateFn = func(text string, exact bool) (browser.ElementState, error) {
		return browser.ElementDisabled, nil
	}

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusNotNeeded, result.Status)

	// 按钮不可点击时不进入任何弹窗处理
	assert.False(t, page.Called("ClickButton("))
	assert.False(t, page.Called("BodyText()"))
}

func TestRestrictionDialog(t *testing.T) {
	page := &browsertest.FakePage{}
	page.ButtonStateFn = func(text string, exact bool) (browser.ElementState, error) {
		return browser.ElementEnabled, nil
	}
	page.BodyTextFn = func() (string, error) {
		return "Renewal Restricted\n" +
			"You can only renew your free service when there is less than 1 day left before it expires. " +
			"Your service expires in 3 days.", nil
	}

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusUnexpired, result.Status)
	require.NotNil(t, result.RemainingDays)
	assert.Equal(t, 3, *result.RemainingDays)

	// 限制弹窗是终态,不再触发发票和支付
	assert.False(t, page.Called("ClickButton(Create Invoice)"))
	assert.False(t, page.Called("ClickButton(Pay)"))
}

func TestRestrictionDialogWithoutDays(t *testing.T) {
	page := &browsertest.FakePage{}
	page.ButtonStateFn = func(text string, exact bool) (browser.ElementState, error) {
		return browser.ElementEnabled, nil
	}
	page.BodyTextFn = func() (string, error) {
		return "Renewal Restricted\n" +
			"You can only renew your free service when there is less than 1 day left before it expires.", nil
	}

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusUnexpired, result.Status)
	assert.Nil(t, result.RemainingDays)
}

func TestFullRenewalSuccess(t *testing.T) {
	site := param.DefaultSite()
	page := &browsertest.FakePage{}

	dialogShown := false
	page.BodyTextFn = func() (string, error) {
		if !dialogShown {
			dialogShown = true
			return "Renew Plan\n" +
				"Below you can renew your service for another Week. After hitting \"Renew\", " +
				"we will generate an invoice for you to pay.", nil
		}
		return "Success!\nInvoice has been generated successfully", nil
	}
	page.ButtonStateFn = func(text string, exact bool) (browser.ElementState, error) {
		return browser.ElementEnabled, nil
	}
	page.ClickButtonFn = func(text string, exact bool) error {
		switch text {
		case createInvoiceButtonText:
			page.CurrentURL = site.BaseURL + "/payment/invoice/4242"
		case payButtonText:
			page.CurrentURL = site.DashboardURL()
		}
		return nil
	}
	renewed := false
	page.LabelTextFn = func(label string) (string, error) {
		if renewed {
			return "Due date\n12 Jan 2025", nil
		}
		renewed = true
		return "Due date\n5 Jan 2025", nil
	}

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusSuccess, result.Status)
	assert.Equal(t, "2025-01-05", result.OldDueDate)
	assert.Equal(t, "2025-01-12", result.NewDueDate)
	assert.True(t, page.Called("ClickButton(Renew)"))
	assert.True(t, page.Called("ClickButton(Create Invoice)"))
	assert.True(t, page.Called("ClickButton(Pay)"))
}

func TestUnexpectedDialogStaysUnknown(t *testing.T) {
	page := &browsertest.FakePage{}
	page.ButtonStateFn = func(text string, exact bool) (browser.ElementState, error) {
		return browser.ElementEnabled, nil
	}
	page.BodyTextFn = func() (string, error) {
		return "Something went wrong", nil
	}

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusUnknown, result.Status)
	assert.False(t, page.Called("ClickButton(Create Invoice)"))
}

func TestInvoicePageNotReached(t *testing.T) {
	page := &browsertest.FakePage{}
	dialogShown := false
	page.BodyTextFn = func() (string, error) {
		if !dialogShown {
			dialogShown = true
			return "Renew Plan\nBelow you can renew your service for another Week", nil
		}
		// 点击Create Invoice后页面没有变成发票页
		return "loading...", nil
	}
	page.ButtonStateFn = func(text string, exact bool) (browser.ElementState, error) {
		return browser.ElementEnabled, nil
	}

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusUnknown, result.Status)
	assert.False(t, page.Called("ClickButton(Pay)"))
}

func TestPaymentRedirectTimeout(t *testing.T) {
	site := param.DefaultSite()
	page := &browsertest.FakePage{}
	dialogShown := false
	page.BodyTextFn = func() (string, error) {
		if !dialogShown {
			dialogShown = true
			return "Renew Plan\nBelow you can renew your service for another Week", nil
		}
		return "Success!\nInvoice has been generated successfully", nil
	}
	page.ButtonStateFn = func(text string, exact bool) (browser.ElementState, error) {
		return browser.ElementEnabled, nil
	}
	page.ClickButtonFn = func(text string, exact bool) error {
		if text == createInvoiceButtonText {
			page.CurrentURL = site.BaseURL + "/payment/invoice/4242"
		}
		// 点击Pay后停留在发票页,支付结果未知
		return nil
	}

	result := newExecutor().Process(page, "A", testServer)
	assert.Equal(t, entity.StatusUnknown, result.Status)
	assert.Empty(t, result.NewDueDate)
}
