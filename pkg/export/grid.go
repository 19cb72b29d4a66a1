package export

// WeekGrid is the presentation form of a published timetable: one row per
// day, one column per slot, empty string for unfilled cells.
type WeekGrid struct {
	Title      string
	SlotLabels []string
	Days       []DayRow
}

// DayRow is a single day's cells in canonical slot order.
type DayRow struct {
	Day   string
	Cells []string
}
