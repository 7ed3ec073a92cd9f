package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyCycleID     = "cycle_id"
	KeyAsset       = "asset"
	KeyKind        = "kind"
	KeyPhase       = "phase"
	KeyStage       = "stage"
	KeyFingerprint = "fingerprint"
	KeyURL         = "url"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func CycleID(id string) slog.Attr     { return slog.String(KeyCycleID, id) }
func Asset(name string) slog.Attr     { return slog.String(KeyAsset, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Phase(name string) slog.Attr     { return slog.String(KeyPhase, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Fingerprint(fp string) slog.Attr { return slog.String(KeyFingerprint, fp) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
