package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"semaphore/dashboard/internal/attendance"
	"semaphore/dashboard/internal/export"
	"semaphore/dashboard/internal/report"
	"semaphore/dashboard/internal/services"
)

var reportOpts struct {
	department string
	courses    []string
	search     string
	detailed   bool
	format     string
	outPath    string
}

var recordsOpts struct {
	course   string
	page     int
	pageSize int
	search   string
}

var signOpts struct {
	student    string
	course     string
	lat        float64
	lon        float64
	noLocation bool
}

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Attendance reports, exports and records",
}

var attendanceReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Per-course attendance summary for a department",
	Args:  cobra.NoArgs,
	RunE:  runAttendanceReport,
}

var attendanceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a department's attendance report to a file",
	Long: `Export a department's attendance report as xlsx, csv or yaml.

Without --out the file is named like the dashboard download, e.g.
attendance_2024-03-04.xlsx or detailed_attendance_2024-03-04.xlsx.`,
	Args: cobra.NoArgs,
	RunE: runAttendanceExport,
}

var attendanceRecordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List raw attendance records of a course",
	Args:  cobra.NoArgs,
	RunE:  runAttendanceRecords,
}

var attendanceSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign attendance for a student",
	Args:  cobra.NoArgs,
	RunE:  runAttendanceSign,
}

func init() {
	for _, c := range []*cobra.Command{attendanceReportCmd, attendanceExportCmd} {
		f := c.Flags()
		f.StringVar(&reportOpts.department, "department", "", "department id")
		f.StringSliceVar(&reportOpts.courses, "course", nil, "restrict to course id (repeatable)")
		f.StringVar(&reportOpts.search, "search", "", "search term")
		f.BoolVar(&reportOpts.detailed, "detailed", false, "per-student rows")
		_ = c.MarkFlagRequired("department")
	}
	attendanceExportCmd.Flags().StringVar(&reportOpts.format, "format", "xlsx", "export format: xlsx, csv, yaml")
	attendanceExportCmd.Flags().StringVar(&reportOpts.outPath, "out", "", "output file or directory")

	f := attendanceRecordsCmd.Flags()
	f.StringVar(&recordsOpts.course, "course", "", "course id")
	f.IntVar(&recordsOpts.page, "page", 1, "page number")
	f.IntVar(&recordsOpts.pageSize, "page-size", 20, "page size, -1 for all")
	f.StringVar(&recordsOpts.search, "search", "", "search term")
	_ = attendanceRecordsCmd.MarkFlagRequired("course")

	f = attendanceSignCmd.Flags()
	f.StringVar(&signOpts.student, "student", "", "student user id")
	f.StringVar(&signOpts.course, "course", "", "course id")
	f.Float64Var(&signOpts.lat, "lat", 0, "latitude")
	f.Float64Var(&signOpts.lon, "lon", 0, "longitude")
	f.BoolVar(&signOpts.noLocation, "no-location", false, "sign without a location check")
	_ = attendanceSignCmd.MarkFlagRequired("student")
	_ = attendanceSignCmd.MarkFlagRequired("course")
	attendanceSignCmd.MarkFlagsMutuallyExclusive("no-location", "lat")
	attendanceSignCmd.MarkFlagsMutuallyExclusive("no-location", "lon")

	attendanceCmd.AddCommand(attendanceReportCmd, attendanceExportCmd, attendanceRecordsCmd, attendanceSignCmd)
	rootCmd.AddCommand(attendanceCmd)
}

func loadReport(cmd *cobra.Command, a *app) (report.Report, error) {
	return a.Reports.Load(cmd.Context(), report.Query{
		DepartmentID: reportOpts.department,
		CourseIDs:    reportOpts.courses,
		SearchTerm:   reportOpts.search,
	})
}

func runAttendanceReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := loadReport(cmd, a)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if reportOpts.detailed {
		return render(out, rep.Details, []string{"COURSE", "STUDENT", "TOTAL", "ATTENDED", "PERCENT"}, rows(rep.Details, func(d attendance.StudentDetail) []string {
			return []string{d.CourseName, d.StudentName, strconv.Itoa(d.TotalClasses), strconv.Itoa(d.AttendedClasses), strconv.Itoa(d.AttendancePercentage) + "%"}
		}))
	}
	return render(out, rep, []string{"COURSE", "STUDENTS", "SESSIONS", "AVERAGE"}, rows(rep.Courses, func(c attendance.CourseSummary) []string {
		return []string{c.CourseName, strconv.Itoa(c.TotalStudents), strconv.Itoa(c.TotalSessions), strconv.Itoa(c.AverageAttendance) + "%"}
	}))
}

func runAttendanceExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(reportOpts.format)
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := loadReport(cmd, a)
	if err != nil {
		return err
	}

	path := exportPath(reportOpts.outPath, export.Filename(format, reportOpts.detailed, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, format, rep.Courses, reportOpts.detailed); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.Info("attendance exported", "path", path, "format", string(format), "courses", len(rep.Courses))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// exportPath resolves --out: empty means the default name in the working
// directory, an existing directory receives the default name.
func exportPath(out, name string) string {
	if out == "" {
		return name
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}

func runAttendanceRecords(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := unwrap(a.Services.Attendance.List(cmd.Context(), services.ListParams{
		PageNumber: recordsOpts.page,
		PageSize:   recordsOpts.pageSize,
		SearchTerm: recordsOpts.search,
		Filters:    map[string]string{services.FilterCourseID: recordsOpts.course},
	}))
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), page, []string{"STUDENT", "COURSE", "STATUS", "RECORDED"}, rows(page.Items, func(r services.AttendanceRecord) []string {
		return []string{r.StudentID, r.CourseID, r.Status, r.RecordedAt.Local().Format("2006-01-02 15:04")}
	}))
}

func runAttendanceSign(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var rec services.AttendanceRecord
	if signOpts.noLocation {
		rec, err = unwrap(a.Services.Attendance.SignWithoutLocation(ctx, signOpts.student, services.SignWithoutLocationRequest{CourseID: signOpts.course}))
	} else {
		rec, err = unwrap(a.Services.Attendance.Sign(ctx, signOpts.student, services.SignAttendanceRequest{
			CourseID:  signOpts.course,
			Latitude:  signOpts.lat,
			Longitude: signOpts.lon,
		}))
	}
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), rec, []string{"STUDENT", "COURSE", "STATUS"}, [][]string{{rec.StudentID, rec.CourseID, orDash(rec.Status)}})
}
