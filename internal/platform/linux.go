package platform

// getLinuxInfo returns platform-specific information for Linux
func getLinuxInfo(homeDir, username string) *Info {
	return &Info{
		OS:       Linux,
		HomeDir:  homeDir,
		Username: username,
		TempDirs: []string{
			"/tmp",
			"/var/tmp",
		},
		UsersDir:            "/home",
		UserTempSubdir:      ".local/share/Trash/files",
		UserTrashInfoSubdir: ".local/share/Trash/info",
		ProtectedPaths:      unixProtectedPaths(),
	}
}

func unixProtectedPaths() []string {
	return []string{
		"/",
		"/bin",
		"/boot",
		"/dev",
		"/etc",
		"/home",
		"/lib",
		"/lib64",
		"/proc",
		"/root",
		"/sbin",
		"/sys",
		"/usr",
		"/var",
		// macOS system directories
		"/System",
		"/Applications",
		"/Library/System",
		"/Users",
		"/private",
		"/private/var",
	}
}
