package options

import (
	"github.com/go-rod/rod/lib/launcher"
)

// LauncherOption rod启动器的函数式选项
type LauncherOption func(*launcher.Launcher)

// CreateLauncher 创建rod启动器并应用所有选项
func CreateLauncher(opts ...LauncherOption) *launcher.Launcher {
	l := launcher.New()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func WithBin(bin string) LauncherOption {
	return func(l *launcher.Launcher) {
		if bin != "" {
			l.Bin(bin)
		}
	}
}

func WithHeadless(headless bool) LauncherOption {
	return func(l *launcher.Launcher) {
		l.Headless(headless)
	}
}

func WithNoSandbox(noSandbox bool) LauncherOption {
	return func(l *launcher.Launcher) {
		l.NoSandbox(noSandbox)
	}
}

func WithDisableDevShmUsage(disable bool) LauncherOption {
	return func(l *launcher.Launcher) {
		if disable {
			l.Set("disable-dev-shm-usage")
		}
	}
}

func WithDisableBlinkFeatures(features string) LauncherOption {
	return func(l *launcher.Launcher) {
		if features != "" {
			l.Set("disable-blink-features", features)
		}
	}
}

func WithWindowSize(size string) LauncherOption {
	return func(l *launcher.Launcher) {
		if size != "" {
			l.Set("window-size", size)
		}
	}
}

func WithUserAgent(userAgent string) LauncherOption {
	return func(l *launcher.Launcher) {
		if userAgent != "" {
			l.Set("user-agent", userAgent)
		}
	}
}

func WithProxy(server string) LauncherOption {
	return func(l *launcher.Launcher) {
		if server != "" {
			l.Proxy(server)
		}
	}
}

func WithLeakless(leakless bool) LauncherOption {
	return func(l *launcher.Launcher) {
		l.Leakless(leakless)
	}
}
