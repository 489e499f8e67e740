package config

import (
	"os"
	"strings"
)

// InlineSyncFallback runs a queued sync in-process when the Pub/Sub publish
// fails (local development, or deployments without a push subscription).
//
// Set via env:
// - TALLY_SYNC_INLINE=true
func InlineSyncFallback() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TALLY_SYNC_INLINE")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// KeepRawPayloads controls whether the verbatim parsed sub-document is stored
// alongside each normalized record. On by default; large Tally exports can
// disable it to keep row sizes down.
//
// Set via env:
// - TALLY_KEEP_RAW_PAYLOADS=false
func KeepRawPayloads() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TALLY_KEEP_RAW_PAYLOADS")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
