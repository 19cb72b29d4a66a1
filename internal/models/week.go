package models

// WeekDays is the fixed teaching week, in generation order.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// SlotLabels are the eight hourly periods of a teaching day, in canonical order.
var SlotLabels = []string{
	"9:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM",
}

var (
	dayIndexes  = indexMap(WeekDays)
	slotIndexes = indexMap(SlotLabels)
)

func indexMap(labels []string) map[string]int {
	m := make(map[string]int, len(labels))
	for i, label := range labels {
		m[label] = i
	}
	return m
}

// DayIndex maps a day name to its position in the week, or -1 when unknown.
func DayIndex(name string) int {
	if idx, ok := dayIndexes[name]; ok {
		return idx
	}
	return -1
}

// SlotIndex maps a slot label to its position in the day, or -1 when unknown.
func SlotIndex(label string) int {
	if idx, ok := slotIndexes[label]; ok {
		return idx
	}
	return -1
}

// DayName returns the calendar name for a day index, empty when out of range.
func DayName(index int) string {
	if index < 0 || index >= len(WeekDays) {
		return ""
	}
	return WeekDays[index]
}

// SlotLabel returns the clock label for a slot index, empty when out of range.
func SlotLabel(index int) string {
	if index < 0 || index >= len(SlotLabels) {
		return ""
	}
	return SlotLabels[index]
}
