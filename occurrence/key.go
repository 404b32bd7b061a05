// Package occurrence merges generated slots with persisted overrides and
// provides the stable per-slot identity used to address occurrences before
// they are ever persisted.
package occurrence

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tshepom/upcoming/calendar"
)

const keySeparator = "_"

// keyTimeFormat must never produce the separator character. RFC 3339 is made
// of digits, 'T', ':', '-', '.', '+' and 'Z' only, so splitting the decoded
// payload on "_" is unambiguous.
const keyTimeFormat = time.RFC3339Nano

// Key encodes the slot identity (eventID, originalStart, originalEnd) as an
// opaque, reversible handle. Occurrences are generated lazily and may not
// have a persisted ID yet; the key stands in for it when a client edits a
// specific occurrence.
func Key(eventID int64, originalStart, originalEnd time.Time) string {
	raw := strings.Join([]string{
		strconv.FormatInt(eventID, 10),
		originalStart.UTC().Format(keyTimeFormat),
		originalEnd.UTC().Format(keyTimeFormat),
	}, keySeparator)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// KeyFor returns the key of a materialized occurrence.
func KeyFor(occ calendar.Occurrence) string {
	return Key(occ.EventID, occ.OriginalStart, occ.OriginalEnd)
}

// DecodeKey recovers the slot identity from a key. It fails with a
// malformed_key error when the key is not valid base64, does not split into
// exactly three fields, or any field does not parse back.
func DecodeKey(key string) (eventID int64, originalStart, originalEnd time.Time, err error) {
	raw, decErr := base64.URLEncoding.DecodeString(key)
	if decErr != nil {
		err = &calendar.Error{
			Type:    calendar.ErrMalformedKey,
			Message: "key is not valid base64",
			Err:     decErr,
		}
		return
	}

	parts := strings.Split(string(raw), keySeparator)
	if len(parts) != 3 {
		err = &calendar.Error{
			Type:    calendar.ErrMalformedKey,
			Message: fmt.Sprintf("want 3 key fields, got %d", len(parts)),
		}
		return
	}

	eventID, parseErr := strconv.ParseInt(parts[0], 10, 64)
	if parseErr != nil {
		err = &calendar.Error{
			Type:    calendar.ErrMalformedKey,
			Message: "bad event id in key",
			Err:     parseErr,
		}
		return
	}
	originalStart, parseErr = time.Parse(keyTimeFormat, parts[1])
	if parseErr != nil {
		err = &calendar.Error{
			Type:    calendar.ErrMalformedKey,
			Message: "bad original start in key",
			Err:     parseErr,
		}
		return
	}
	originalEnd, parseErr = time.Parse(keyTimeFormat, parts[2])
	if parseErr != nil {
		err = &calendar.Error{
			Type:    calendar.ErrMalformedKey,
			Message: "bad original end in key",
			Err:     parseErr,
		}
		return
	}
	return eventID, originalStart, originalEnd, nil
}
