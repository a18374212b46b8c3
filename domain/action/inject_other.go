//go:build !windows

package action

type unsupportedInjector struct{ name string }

func (u unsupportedInjector) Name() string { return u.name }

func (unsupportedInjector) Send(InputEvent) (int, error) { return 0, ErrUnsupported }

// NewPlatformInjector returns an injector whose layers always reject. Synthetic
// input is only implemented for Windows.
func NewPlatformInjector() Injector {
	return &LayeredInjector{Primary: unsupportedInjector{"primary"}, Fallback: unsupportedInjector{"fallback"}}
}
