package domain

import "time"

// IsOver18 reports whether the person born on birthDate is at least 18 at
// the reference time. Donor profiles require adult donors. Calendar
// arithmetic (AddDate) keeps birthday boundaries exact: someone is 18 on
// their 18th birthday, and a Feb 29 birth date rolls to Mar 1 in
// non-leap years.
func IsOver18(birthDate, now time.Time) bool {
	adultAt := birthDate.UTC().AddDate(18, 0, 0)
	return !now.UTC().Before(adultAt)
}
