// Package capacity derives per-hour slot increments from a reservation's
// child hour allocations. A child present for h hours starting at slot S
// occupies blocks S..S+h-1; the increment at offset i is the count of
// children still present at that offset.
package capacity

// Increment is one slot-stock mutation: consume Count child-hours in the
// (Date, Hour) slot.
type Increment struct {
	Date  string
	Hour  int
	Count int
}

// Increments expands children hours into per-slot increments. Offsets that
// would push the hour past 23 are dropped: slots do not wrap across midnight.
func Increments(date string, startHour int, childrenHours []int) []Increment {
	maxHours := 0
	for _, h := range childrenHours {
		if h > maxHours {
			maxHours = h
		}
	}

	var out []Increment
	for i := 0; i < maxHours; i++ {
		count := 0
		for _, h := range childrenHours {
			if h > i {
				count++
			}
		}
		if count <= 0 {
			continue
		}
		hour := startHour + i
		if hour < 0 || hour > 23 {
			continue
		}
		out = append(out, Increment{Date: date, Hour: hour, Count: count})
	}
	return out
}

// TotalChildHours is the sum of all increments, i.e. the number of
// child-hours a reservation consumes.
func TotalChildHours(incs []Increment) int {
	total := 0
	for _, inc := range incs {
		total += inc.Count
	}
	return total
}
