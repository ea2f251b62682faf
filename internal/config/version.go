package config

import "strings"

// CurrentConfigVersion is the settings schema this build understands best.
const CurrentConfigVersion = "1"

// SupportedConfigVersions lists every settings schema Load accepts.
var SupportedConfigVersions = []string{CurrentConfigVersion}

// IsSupportedConfigVersion reports whether v is a known settings schema.
func IsSupportedConfigVersion(v string) bool {
	for _, s := range SupportedConfigVersions {
		if v == s {
			return true
		}
	}
	return false
}

// SupportedConfigVersionsCSV is used in error messages.
func SupportedConfigVersionsCSV() string {
	return strings.Join(SupportedConfigVersions, ", ")
}
