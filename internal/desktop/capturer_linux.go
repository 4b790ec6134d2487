//go:build linux

package desktop

func newPlatformScreenCapturer() Capturer {
	return NewDRMScreenCapturer()
}
