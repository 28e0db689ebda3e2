package handler

import "strings"

// apiMountPath turns the configured base path into a chi mount point:
// "api/" and "/api" both mount at "/api", and a blank value mounts at "/".
func apiMountPath(value string) string {
	trimmed := strings.Trim(strings.TrimSpace(value), "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}
