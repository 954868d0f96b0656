// Package util provides utility functions for the CoursePilot application.
package util

import (
	"math/rand/v2"
	"strings"
)

// GenerateRandomID generates a random ID with the specified prefix and hex length.
// The returned ID will be in the format: "{prefix}{hex_string}".
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the specified length.
// Uses math/rand/v2; not for cryptographic purposes.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.IntN(16)])
	}

	return builder.String()
}

// GenerateCourseID generates a unique course ID with "c_" prefix.
func GenerateCourseID() string {
	return GenerateRandomID("c_", 32)
}

// GenerateInvitationID generates a unique invitation ID with "inv_" prefix.
func GenerateInvitationID() string {
	return GenerateRandomID("inv_", 32)
}

// GenerateAnnouncementID generates a unique announcement ID with "ann_" prefix.
func GenerateAnnouncementID() string {
	return GenerateRandomID("ann_", 32)
}

// GenerateAssignmentID generates a unique assignment ID with "asg_" prefix.
func GenerateAssignmentID() string {
	return GenerateRandomID("asg_", 32)
}

// GenerateTurnID generates a unique turn record ID with "t_" prefix.
func GenerateTurnID() string {
	return GenerateRandomID("t_", 32)
}
