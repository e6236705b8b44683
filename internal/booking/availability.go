package booking

// Conflicts reports whether existing overlaps candidate. All bounds are
// inclusive, so a stay ending on the day another begins is a conflict.
func Conflicts(candidate, existing Stay) bool {
	return within(existing.CheckIn, candidate.CheckIn, candidate.CheckOut) ||
		within(existing.CheckOut, candidate.CheckIn, candidate.CheckOut) ||
		(!existing.CheckIn.After(candidate.CheckIn) && !existing.CheckOut.Before(candidate.CheckOut))
}

// IsAvailable scans one room's reservations. Cancelled reservations and
// excludeID (when non-zero) are skipped.
func IsAvailable(candidate Stay, existing []Reservation, excludeID int64) bool {
	return len(conflicting(candidate, existing, excludeID)) == 0
}

func conflicting(candidate Stay, existing []Reservation, excludeID int64) []int64 {
	var ids []int64
	for _, r := range existing {
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if !r.Status.Active() {
			continue
		}
		if Conflicts(candidate, r.Stay()) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
