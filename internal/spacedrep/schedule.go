package spacedrep

// BaseIntervals defines the expanding interval schedule in days.
// Stage 0 = first review after the cell is introduced.
var BaseIntervals = []int{1, 3, 7, 14, 30, 60}

// GraduationStage is the number of consecutive correct reviews after which
// a cell graduates.
const GraduationStage = 6

// GraduatedIntervalDays is the review interval for graduated cells.
const GraduatedIntervalDays = 90
