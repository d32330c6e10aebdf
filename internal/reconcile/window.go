// Package reconcile combines the validity windows reported for a certificate
// and its provisioning profile.
package reconcile

import "p12status/internal/dates"

// Window is an effective/expiration pair. Either side may be unparseable.
type Window struct {
	Effective  dates.Date
	Expiration dates.Date
}

// Reconcile returns the intersection of both windows: the later effective
// date and the earlier expiration date. A side that only one document
// reports is taken as-is; a side neither reports stays unparseable.
func Reconcile(cert, profile Window) Window {
	return Window{
		Effective:  Latest(cert.Effective, profile.Effective),
		Expiration: Earliest(cert.Expiration, profile.Expiration),
	}
}

// Latest returns the later of two dates, ignoring unparseable ones.
func Latest(a, b dates.Date) dates.Date {
	switch {
	case a.Valid() && b.Valid():
		if a.Before(b) {
			return b
		}
		return a
	case a.Valid():
		return a
	default:
		return b
	}
}

// Earliest returns the earlier of two dates, ignoring unparseable ones.
func Earliest(a, b dates.Date) dates.Date {
	switch {
	case a.Valid() && b.Valid():
		if b.Before(a) {
			return b
		}
		return a
	case a.Valid():
		return a
	default:
		return b
	}
}
