package param

import "time"

// Site HidenCloud站点的固定参数
// 登录Cookie的名称和域名是站点固定的,不能随意修改
type Site struct {
	BaseURL         string `json:"base_url"`
	LoginPath       string `json:"login_path"`
	DashboardPath   string `json:"dashboard_path"`
	InvoiceFragment string `json:"invoice_fragment"`
	CookieName      string `json:"cookie_name"`
	CookieDomain    string `json:"cookie_domain"`
}

// DefaultSite 返回dash.hidencloud.com的站点参数
func DefaultSite() *Site {
	return &Site{
		BaseURL:         "https://dash.hidencloud.com",
		LoginPath:       "/auth/login",
		DashboardPath:   "/dashboard",
		InvoiceFragment: "/payment/invoice/",
		CookieName:      "remember_web_59ba36addc2b2f9401580f014c7f58ea4e30989d",
		CookieDomain:    "dash.hidencloud.com",
	}
}

// LoginURL 登录页面完整URL
func (s *Site) LoginURL() string {
	return s.BaseURL + s.LoginPath
}

// DashboardURL 控制面板完整URL
func (s *Site) DashboardURL() string {
	return s.BaseURL + s.DashboardPath
}

func (s *Site) IsValid() bool {
	return s.BaseURL != "" &&
		s.LoginPath != "" &&
		s.DashboardPath != "" &&
		s.CookieName != "" &&
		s.CookieDomain != ""
}

// Timing 续费流程中的各类等待时间
// 弹窗/发票页面是服务端异步生成的,点击后必须静置一段时间再检查页面内容
type Timing struct {
	NavigateTimeout  time.Duration `json:"navigate_timeout"`
	LocateTimeout    time.Duration `json:"locate_timeout"`
	TurnstileTimeout time.Duration `json:"turnstile_timeout"`
	TokenTimeout     time.Duration `json:"token_timeout"`
	LoginWaitTimeout time.Duration `json:"login_wait_timeout"`
	PaymentTimeout   time.Duration `json:"payment_timeout"`

	DialogSettle  time.Duration `json:"dialog_settle"`
	InvoiceSettle time.Duration `json:"invoice_settle"`
	PaymentSettle time.Duration `json:"payment_settle"`
	DueDateSettle time.Duration `json:"due_date_settle"`
}

// DefaultTiming 返回与线上站点行为匹配的默认等待时间
// 测试中可以传入零值Timing,所有静置等待会被跳过
func DefaultTiming() *Timing {
	return &Timing{
		NavigateTimeout:  60 * time.Second,
		LocateTimeout:    10 * time.Second,
		TurnstileTimeout: 30 * time.Second,
		TokenTimeout:     60 * time.Second,
		LoginWaitTimeout: 60 * time.Second,
		PaymentTimeout:   15 * time.Second,

		DialogSettle:  2 * time.Second,
		InvoiceSettle: 10 * time.Second,
		PaymentSettle: 5 * time.Second,
		DueDateSettle: 2 * time.Second,
	}
}
