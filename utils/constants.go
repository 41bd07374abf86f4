// File: utils/constants.go
package utils

import "time"

// DraftCachePrefix is the prefix used for Redis registration-draft keys.
const DraftCachePrefix = "draft:"

// StagedFilePrefix is the prefix used for Redis staged-file metadata keys.
const StagedFilePrefix = "staged:"

// FlagCachePrefix is the prefix used for Redis uniqueness-flag keys. Flags
// live apart from the draft so probe writes never race draft writes.
const FlagCachePrefix = "flags:"

// DefaultDraftTTL is the fallback time-to-live for registration drafts.
const DefaultDraftTTL = 60 * time.Minute
