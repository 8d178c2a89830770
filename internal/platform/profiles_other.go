//go:build !windows

package platform

func windowsProfiles() ([]string, error) {
	return nil, ErrUnsupportedPlatform
}
