package attendance

// StudentDetail is one row of the per-student breakdown.
type StudentDetail struct {
	CourseID             string `json:"courseId" yaml:"courseId"`
	CourseName           string `json:"courseName" yaml:"courseName"`
	StudentID            string `json:"studentId" yaml:"studentId"`
	StudentName          string `json:"studentName" yaml:"studentName"`
	TotalClasses         int    `json:"totalClasses" yaml:"totalClasses"`
	AttendedClasses      int    `json:"attendedClasses" yaml:"attendedClasses"`
	AttendancePercentage int    `json:"attendancePercentage" yaml:"attendancePercentage"`
}

// Details flattens summaries into rows, course by course.
func Details(summaries []CourseSummary) []StudentDetail {
	out := make([]StudentDetail, 0)
	for _, course := range summaries {
		for _, s := range course.Students {
			out = append(out, StudentDetail{
				CourseID:             course.CourseID,
				CourseName:           course.CourseName,
				StudentID:            s.StudentID,
				StudentName:          s.StudentName,
				TotalClasses:         s.TotalCount,
				AttendedClasses:      s.PresentCount,
				AttendancePercentage: Percent(s.PresentCount, s.TotalCount),
			})
		}
	}
	return out
}

// Filter keeps the summaries of the given course ids, or all of them when
// ids is empty.
func Filter(summaries []CourseSummary, ids ...string) []CourseSummary {
	if len(ids) == 0 {
		return summaries
	}
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := make([]CourseSummary, 0, len(summaries))
	for _, s := range summaries {
		if _, ok := keep[s.CourseID]; ok {
			out = append(out, s)
		}
	}
	return out
}
