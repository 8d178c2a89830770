package platform

import (
	"os"
	"path/filepath"
)

// getWindowsInfo returns platform-specific information for Windows.
// System folders come from the environment so that installations on any
// drive letter are covered.
func getWindowsInfo(homeDir, username string) *Info {
	winDir := envOr("WINDIR", `C:\Windows`)
	programData := envOr("PROGRAMDATA", `C:\ProgramData`)
	systemDrive := envOr("SYSTEMDRIVE", "C:") + `\`

	return &Info{
		OS:       Windows,
		HomeDir:  homeDir,
		Username: username,
		TempDirs: []string{
			filepath.Join(winDir, "Temp"),
			filepath.Join(programData, "Temp"),
		},
		UserTempSubdir: filepath.Join("AppData", "Local", "Temp"),
		ProtectedPaths: []string{
			systemDrive,
			winDir,
			filepath.Join(winDir, "System32"),
			filepath.Join(winDir, "SysWOW64"),
			filepath.Join(winDir, "WinSxS"),
			filepath.Join(winDir, "Installer"),
			filepath.Join(systemDrive, "Boot"),
			filepath.Join(systemDrive, "EFI"),
			filepath.Join(systemDrive, "Recovery"),
			filepath.Join(systemDrive, "Users"),
			envOr("PROGRAMFILES", `C:\Program Files`),
			envOr("PROGRAMFILES(X86)", `C:\Program Files (x86)`),
			programData,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
