package affogato

import (
	"fmt"
	"strconv"
	"strings"
)

// LatestVersion is the version token understood by Secret Manager to mean a
// secret's most recently added version. An unset version in
// AccessVersionOptions resolves to this token.
const LatestVersion = "latest"

// SecretName returns the full resource name of a secret, in the form
// {parent}/secrets/{secretID}.
func SecretName(parent, secretID string) string {
	return fmt.Sprintf("%s/secrets/%s", parent, secretID)
}

// SecretVersionName returns the full resource name of one version of a
// secret, in the form {parent}/secrets/{secretID}/versions/{version}. The
// version is either a positive integer rendered as a string or
// LatestVersion.
func SecretVersionName(parent, secretID, version string) string {
	return fmt.Sprintf("%s/versions/%s", SecretName(parent, secretID), version)
}

// FormatVersion renders a numeric secret version as the string the service
// expects in resource names.
func FormatVersion(version int) string {
	return strconv.Itoa(version)
}

// NormalizeParent converts a bare project ID into a full project parent
// resource name. Strings that already contain a path separator are returned
// unchanged.
func NormalizeParent(parent string) string {
	if parent == "" {
		return parent
	}
	if !strings.Contains(parent, "/") {
		return "projects/" + parent
	}
	return parent
}
