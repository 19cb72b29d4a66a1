package dto

// SlotView is one committed assignment as exposed to API consumers.
type SlotView struct {
	Day              string `json:"day"`
	TimeSlot         string `json:"timeSlot"`
	TeacherID        string `json:"teacherId"`
	TeacherName      string `json:"teacherName,omitempty"`
	SubjectID        string `json:"subjectId"`
	SubjectName      string `json:"subjectName,omitempty"`
	ClassroomID      string `json:"classroomId"`
	ClassroomName    string `json:"classroomName,omitempty"`
	StudentGroupID   string `json:"studentGroupId"`
	StudentGroupName string `json:"studentGroupName,omitempty"`
}

// GenerationStats summarises one generation run.
type GenerationStats struct {
	TotalCells    int `json:"totalCells"`
	FilledCells   int `json:"filledCells"`
	UnfilledCells int `json:"unfilledCells"`
}

// GenerateTimetableResponse is returned after a run publishes a new version.
type GenerateTimetableResponse struct {
	TimetableID    string          `json:"timetableId"`
	StudentGroupID string          `json:"studentGroupId"`
	Version        int             `json:"version"`
	Stats          GenerationStats `json:"stats"`
	Slots          []SlotView      `json:"slots"`
}

// DayView groups the active timetable's slots for one day in canonical
// slot order.
type DayView struct {
	Day   string     `json:"day"`
	Slots []SlotView `json:"slots"`
}

// TimetableView is the published week as served on read paths.
type TimetableView struct {
	TimetableID    string    `json:"timetableId"`
	StudentGroupID string    `json:"studentGroupId"`
	Version        int       `json:"version"`
	Days           []DayView `json:"days"`
}

// UpsertPreferenceRequest creates or replaces a teacher's scheduling
// preference record. AvailableTimeSlots maps lowercase day name to slot
// label to -1/0/1; omitted entries default to available.
type UpsertPreferenceRequest struct {
	MaxSlotsPerDay     int                       `json:"maxSlotsPerDay" validate:"required,min=1,max=8"`
	MaxSlotsPerWeek    int                       `json:"maxSlotsPerWeek" validate:"required,min=1,max=40"`
	AvailableTimeSlots map[string]map[string]int `json:"availableTimeSlots"`
}
