package platform

// getMacOSInfo returns platform-specific information for macOS
func getMacOSInfo(homeDir, username string) *Info {
	return &Info{
		OS:       MacOS,
		HomeDir:  homeDir,
		Username: username,
		TempDirs: []string{
			"/private/tmp",
			"/private/var/tmp",
		},
		UsersDir:       "/Users",
		SkipUsers:      []string{"Shared"},
		UserTempSubdir: ".Trash",
		ProtectedPaths: unixProtectedPaths(),
	}
}
