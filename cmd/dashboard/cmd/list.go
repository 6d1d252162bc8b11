package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"semaphore/dashboard/internal/services"
)

var listOpts struct {
	faculty    string
	department string
	courses    []string
	student    string
	page       int
	pageSize   int
	search     string
}

var listResources = []string{
	"faculties", "levels", "departments", "courses", "lecturers",
	"students", "schedules", "classrooms", "enrollments",
}

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List academic resources",
	Long: `List academic resources from the backend.

Resources:
  faculties
  levels
  departments   [--faculty]
  courses       --department
  lecturers     [--page --page-size --search]
  students      [--department --page --page-size --search]
  schedules     [--course ...]
  classrooms    --faculty
  enrollments   --student`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: listResources,
	RunE:      runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listOpts.faculty, "faculty", "", "faculty id")
	f.StringVar(&listOpts.department, "department", "", "department id")
	f.StringSliceVar(&listOpts.courses, "course", nil, "course id (repeatable)")
	f.StringVar(&listOpts.student, "student", "", "student user id")
	f.IntVar(&listOpts.page, "page", 1, "page number")
	f.IntVar(&listOpts.pageSize, "page-size", 20, "page size, -1 for all")
	f.StringVar(&listOpts.search, "search", "", "search term")
	rootCmd.AddCommand(listCmd)
}

func requireFlag(name, value string) error {
	if value == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	resource := args[0]
	switch resource {
	case "courses":
		if err := requireFlag("department", listOpts.department); err != nil {
			return err
		}
	case "classrooms":
		if err := requireFlag("faculty", listOpts.faculty); err != nil {
			return err
		}
	case "enrollments":
		if err := requireFlag("student", listOpts.student); err != nil {
			return err
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	svc := a.Services
	out := cmd.OutOrStdout()
	params := services.ListParams{PageNumber: listOpts.page, PageSize: listOpts.pageSize, SearchTerm: listOpts.search}

	switch resource {
	case "faculties":
		items, err := unwrap(svc.Faculties.List(ctx))
		if err != nil {
			return err
		}
		return render(out, items, []string{"ID", "CODE", "NAME"}, rows(items, func(f services.Faculty) []string {
			return []string{f.ID, f.Code, f.Name}
		}))
	case "levels":
		items, err := unwrap(svc.Levels.List(ctx))
		if err != nil {
			return err
		}
		return render(out, items, []string{"ID", "NAME"}, rows(items, func(l services.Level) []string {
			return []string{l.ID, l.Name}
		}))
	case "departments":
		r := svc.Departments.List(ctx)
		if listOpts.faculty != "" {
			r = svc.Departments.ListByFaculty(ctx, listOpts.faculty)
		}
		items, err := unwrap(r)
		if err != nil {
			return err
		}
		return render(out, items, []string{"ID", "CODE", "NAME", "FACULTY"}, rows(items, func(d services.Department) []string {
			return []string{d.ID, d.Code, d.Name, orDash(d.FacultyID)}
		}))
	case "courses":
		items, err := unwrap(svc.Courses.ListByDepartment(ctx, listOpts.department))
		if err != nil {
			return err
		}
		return render(out, items, []string{"ID", "CODE", "TITLE", "CREDITS"}, rows(items, func(c services.Course) []string {
			return []string{c.ID, c.Code, c.Title, strconv.Itoa(c.CreditUnits)}
		}))
	case "lecturers":
		page, err := unwrap(svc.Lecturers.List(ctx, params))
		if err != nil {
			return err
		}
		return render(out, page, []string{"ID", "NAME", "EMAIL", "DEPARTMENT"}, rows(page.Items, func(l services.Lecturer) []string {
			return []string{l.ID, l.FirstName + " " + l.LastName, l.Email, orDash(l.DepartmentID)}
		}))
	case "students":
		if listOpts.department != "" {
			params.Filters = map[string]string{"departmentId": listOpts.department}
		}
		page, err := unwrap(svc.Students.List(ctx, params))
		if err != nil {
			return err
		}
		return render(out, page, []string{"ID", "MATRICULATION", "NAME", "EMAIL"}, rows(page.Items, func(s services.Student) []string {
			return []string{s.UserID, s.MatriculationNumber, s.FullName(), s.Email}
		}))
	case "schedules":
		r := svc.ClassSchedules.List(ctx)
		if len(listOpts.courses) > 0 {
			r = svc.ClassSchedules.ListByCourses(ctx, listOpts.courses)
		}
		items, err := unwrap(r)
		if err != nil {
			return err
		}
		return render(out, items, scheduleHeaders, rows(items, scheduleRow))
	case "classrooms":
		items, err := unwrap(svc.Classrooms.ListByFaculty(ctx, listOpts.faculty))
		if err != nil {
			return err
		}
		return render(out, items, []string{"ID", "NAME", "CAPACITY"}, rows(items, func(c services.Classroom) []string {
			return []string{c.ID, c.Name, strconv.Itoa(c.Capacity)}
		}))
	case "enrollments":
		items, err := unwrap(svc.Enrollments.List(ctx, listOpts.student))
		if err != nil {
			return err
		}
		return render(out, items, []string{"ID", "STUDENT", "COURSE", "ENROLLED"}, rows(items, func(e services.Enrollment) []string {
			enrolled := "-"
			if !e.EnrolledAt.IsZero() {
				enrolled = e.EnrolledAt.Format("2006-01-02")
			}
			return []string{orDash(e.ID), e.StudentID, e.CourseID, enrolled}
		}))
	}
	return errors.New("unknown resource " + resource)
}

func rows[T any](items []T, fn func(T) []string) [][]string {
	out := make([][]string, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
