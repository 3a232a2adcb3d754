package services

import "strings"

// normalizeAddress canonicalizes an EVM address for lookups. Addresses are
// stored lower-cased, so normalization is a single lower-casing applied at
// every boundary where an address enters the system.
func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
