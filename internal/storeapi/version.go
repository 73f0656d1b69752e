package storeapi

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/mod/semver"
)

// versionCheck warns once when the backend reports an API version older
// than the configured minimum. Non-semver values are ignored.
type versionCheck struct {
	min    string
	logger *slog.Logger
	warned atomic.Bool
}

func (v *versionCheck) observe(reported string) {
	if v.min == "" || reported == "" || v.warned.Load() {
		return
	}
	if !olderThan(reported, v.min) {
		return
	}
	if v.warned.CompareAndSwap(false, true) {
		v.logger.Warn("backend API older than supported minimum",
			slog.String("reported", reported),
			slog.String("minimum", v.min),
		)
	}
}

// olderThan reports whether version a sorts before b. Either side failing to
// parse as semver yields false.
func olderThan(a, b string) bool {
	av, bv := normalizeVersion(a), normalizeVersion(b)
	if !semver.IsValid(av) || !semver.IsValid(bv) {
		return false
	}
	return semver.Compare(av, bv) < 0
}

// normalizeVersion adds the "v" prefix semver expects.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
