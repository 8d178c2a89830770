//go:build windows

package platform

import (
	"fmt"

	"github.com/yusufpapurcu/wmi"
)

type win32UserProfile struct {
	LocalPath string
	Special   bool
}

// windowsProfiles lists the home directories of all non-special user
// profiles registered on the machine.
func windowsProfiles() ([]string, error) {
	var profiles []win32UserProfile
	query := wmi.CreateQuery(&profiles, "WHERE Special = FALSE", "Win32_UserProfile")
	if err := wmi.Query(query, &profiles); err != nil {
		return nil, fmt.Errorf("failed to query user profiles: %w", err)
	}

	homes := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.Special || p.LocalPath == "" {
			continue
		}
		homes = append(homes, p.LocalPath)
	}
	return homes, nil
}
