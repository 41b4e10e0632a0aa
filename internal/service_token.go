package internal

import "crypto/subtle"

// ServiceTokenHeader carries the shared credential on service-to-service calls.
const ServiceTokenHeader = "X-Service-Token"

// DefaultServiceToken is the development credential; production configs reject it.
const DefaultServiceToken = "dev-service-token"

// ValidServiceToken reports whether got matches the expected credential.
// An empty expected token never matches.
func ValidServiceToken(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
