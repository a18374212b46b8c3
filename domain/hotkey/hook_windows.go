//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/soocke/pixel-trigger-go/domain/action"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL  = 13
	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	llkhfInjected = 0x10
)

type kbdLLHook struct {
	VkCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	X, Y    int32
	private uint32
}

// Only one low-level hook is installed per process; the callback forwards to it.
var (
	hookSink     atomic.Pointer[chan<- Event]
	hookCallback = windows.NewCallback(hookProc)
)

func hookProc(code, wParam, lParam uintptr) uintptr {
	if int32(code) >= 0 {
		if sink := hookSink.Load(); sink != nil {
			kb := (*kbdLLHook)(unsafe.Pointer(lParam))
			if k, ok := action.KeyByCode(uint16(kb.VkCode)); ok {
				var down, known bool
				switch wParam {
				case wmKeyDown, wmSysKeyDown:
					down, known = true, true
				case wmKeyUp, wmSysKeyUp:
					known = true
				}
				if known {
					select {
					case *sink <- Event{Key: k, Down: down, Injected: kb.Flags&llkhfInjected != 0}:
					default:
					}
				}
			}
		}
	}
	r, _, _ := procCallNextHookEx.Call(0, code, wParam, lParam)
	return r
}

// HookSource is a WH_KEYBOARD_LL hook serviced by a message loop on its own locked
// OS thread. Keys are observed, never swallowed.
type HookSource struct {
	mu       sync.Mutex
	threadID uint32
	exited   chan struct{}
}

// NewHookSource returns the platform keyboard hook.
func NewHookSource() *HookSource { return &HookSource{} }

func (h *HookSource) Start(events chan<- Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.exited != nil {
		return ErrAlreadyStarted
	}
	if err := procSetWindowsHookExW.Find(); err != nil {
		return err
	}
	if !hookSink.CompareAndSwap(nil, &events) {
		return fmt.Errorf("keyboard hook already installed")
	}

	type started struct {
		tid uint32
		err error
	}
	ready := make(chan started, 1)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		var mod windows.Handle
		_ = windows.GetModuleHandleEx(0, nil, &mod)
		hook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookCallback, uintptr(mod), 0)
		if hook == 0 {
			hookSink.Store(nil)
			ready <- started{err: fmt.Errorf("SetWindowsHookExW: %w", err)}
			return
		}
		ready <- started{tid: windows.GetCurrentThreadId()}

		var m winMsg
		for {
			r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				break
			}
		}
		procUnhookWindowsHookEx.Call(hook)
		hookSink.Store(nil)
	}()
	res := <-ready
	if res.err != nil {
		return res.err
	}
	h.threadID = res.tid
	h.exited = exited
	return nil
}

// Stop posts WM_QUIT to the hook thread and waits for it to unhook.
func (h *HookSource) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.exited == nil || h.threadID == 0 {
		return
	}
	procPostThreadMessageW.Call(uintptr(h.threadID), wmQuit, 0, 0)
	<-h.exited
	h.threadID = 0
	h.exited = nil
}
