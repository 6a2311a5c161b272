//go:build windows

package daemon

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/yearprogress/yearprogress/internal/display"
	"github.com/yearprogress/yearprogress/internal/progress"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon   *Daemon
	logger   *zap.Logger
	quit     chan struct{}
	stopOnce sync.Once
	ready    chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
		ready:  make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(progressIcon(0))
	systray.SetTitle("YP")
	systray.SetTooltip("Year progress")

	mRefresh := systray.AddMenuItem("Refresh", "Recompute progress now")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show current status")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	close(t.ready)

	// Start daemon logic in background
	go t.daemon.run()

	go func() {
		for {
			select {
			case <-mRefresh.ClickedCh:
				t.logger.Info("Refresh clicked from tray")
				go func() {
					if _, err := t.daemon.Evaluate(); err != nil {
						t.logger.Error("Manual refresh failed", zap.Error(err))
					}
				}()
			case <-mStatus.ClickedCh:
				t.logger.Info("Status clicked from tray")
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	t.stopOnce.Do(func() {
		close(t.quit)
	})
}

// Publish updates the tray icon and tooltip with a fresh evaluation
func (t *TrayApp) Publish(snap progress.Snapshot) {
	select {
	case <-t.ready:
	default:
		return
	}
	systray.SetIcon(progressIcon(snap.Info.Progress))
	systray.SetTooltip(display.Summary(snap))
}

// showStatus shows current progress
func (t *TrayApp) showStatus() {
	status := t.daemon.GetStatus()
	t.logger.Info("Current status", zap.Any("status", status))

	message := "No status available"
	if summary, ok := status["summary"].(string); ok {
		message = fmt.Sprintf("%s\nNext refresh: %v", summary, status["next_run"])
	}

	showMessageBox("Year Progress", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
