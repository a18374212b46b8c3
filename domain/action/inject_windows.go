//go:build windows

package action

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32         = windows.NewLazySystemDLL("user32.dll")
	procSendInput  = user32.NewProc("SendInput")
	procMouseEvent = user32.NewProc("mouse_event")
	procKeybdEvent = user32.NewProc("keybd_event")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040

	keyeventfKeyUp = 0x0002
)

// Win32 INPUT layouts. The mouse variant is the largest union member, so the
// keyboard variant is padded to the same size.
type mouseInput struct {
	Dx, Dy    int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type mouseRecord struct {
	Type uint32
	Mi   mouseInput
}

type keybdRecord struct {
	Type uint32
	Ki   keybdInput
	_    [unsafe.Sizeof(mouseInput{}) - unsafe.Sizeof(keybdInput{})]byte
}

func buttonFlags(b Button, down bool) (uint32, error) {
	switch b {
	case ButtonLeft:
		if down {
			return mouseeventfLeftDown, nil
		}
		return mouseeventfLeftUp, nil
	case ButtonRight:
		if down {
			return mouseeventfRightDown, nil
		}
		return mouseeventfRightUp, nil
	case ButtonMiddle:
		if down {
			return mouseeventfMiddleDown, nil
		}
		return mouseeventfMiddleUp, nil
	}
	return 0, fmt.Errorf("unknown button %d", b)
}

// sendInput is the primary mechanism (SendInput).
type sendInput struct{}

func (sendInput) Name() string { return "SendInput" }

func (sendInput) Send(ev InputEvent) (int, error) {
	var (
		ptr  unsafe.Pointer
		size uintptr
	)
	switch ev.Kind {
	case ButtonDown, ButtonUp:
		flags, err := buttonFlags(ev.Button, ev.Kind == ButtonDown)
		if err != nil {
			return 0, err
		}
		rec := mouseRecord{Type: inputMouse, Mi: mouseInput{Flags: flags}}
		ptr, size = unsafe.Pointer(&rec), unsafe.Sizeof(rec)
		n, _, callErr := procSendInput.Call(1, uintptr(ptr), size)
		if n == 0 {
			return 0, fmt.Errorf("SendInput: %v", callErr)
		}
		return int(n), nil
	case KeyDown, KeyUp:
		var flags uint32
		if ev.Kind == KeyUp {
			flags = keyeventfKeyUp
		}
		rec := keybdRecord{Type: inputKeyboard, Ki: keybdInput{Vk: ev.Key.Code, Flags: flags}}
		ptr, size = unsafe.Pointer(&rec), unsafe.Sizeof(rec)
		n, _, callErr := procSendInput.Call(1, uintptr(ptr), size)
		if n == 0 {
			return 0, fmt.Errorf("SendInput: %v", callErr)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("unknown event kind %d", ev.Kind)
}

// legacyInput is the fallback mechanism (mouse_event / keybd_event). These calls
// return nothing, so a call that loads and runs is counted as one accepted event.
type legacyInput struct{}

func (legacyInput) Name() string { return "legacy" }

func (legacyInput) Send(ev InputEvent) (int, error) {
	switch ev.Kind {
	case ButtonDown, ButtonUp:
		flags, err := buttonFlags(ev.Button, ev.Kind == ButtonDown)
		if err != nil {
			return 0, err
		}
		if err := procMouseEvent.Find(); err != nil {
			return 0, err
		}
		_, _, _ = procMouseEvent.Call(uintptr(flags), 0, 0, 0, 0)
		return 1, nil
	case KeyDown, KeyUp:
		var flags uintptr
		if ev.Kind == KeyUp {
			flags = keyeventfKeyUp
		}
		if err := procKeybdEvent.Find(); err != nil {
			return 0, err
		}
		_, _, _ = procKeybdEvent.Call(uintptr(ev.Key.Code), 0, flags, 0)
		return 1, nil
	}
	return 0, fmt.Errorf("unknown event kind %d", ev.Kind)
}

// NewPlatformInjector returns SendInput with the legacy calls as fallback.
func NewPlatformInjector() Injector {
	return &LayeredInjector{Primary: sendInput{}, Fallback: legacyInput{}}
}
