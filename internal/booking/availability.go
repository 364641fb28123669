package booking

import (
	"context"
)

// AvailabilityGuard asserts that no other active reservation
// occupies a (venue, date, time slot) triple before a booking is
// written. The check runs inside the same unit of work as the
// write, and the store backs it with a uniqueness constraint on
// the triple, so two concurrent bookings of the same slot cannot
// both commit: the loser's insert fails with a duplicate-key
// error which the store reports as SlotConflict. The guard's own
// query exists to fail the common case early with a clear message
// before the insert is attempted.
type AvailabilityGuard struct{}

// Ensure fails with SlotConflict when another active reservation
// holds the triple. excludeID exempts the reservation being
// updated from matching itself; pass zero on create. ck must be
// the same unit of work the subsequent write runs in.
func (AvailabilityGuard) Ensure(ctx context.Context, ck ConflictChecker, venueID uint64, date string, slotID, excludeID uint64) error {
	taken, err := ck.FindConflict(ctx, venueID, date, slotID, excludeID)
	if err != nil {
		return WrapError(KindDependency, err, "availability check failed")
	}
	if taken {
		return NewError(KindSlotConflict, "venue %d is already booked on %s for slot %d", venueID, date, slotID)
	}
	return nil
}
