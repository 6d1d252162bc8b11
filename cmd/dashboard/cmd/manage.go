package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"semaphore/dashboard/internal/result"
	"semaphore/dashboard/internal/services"
)

var manageOpts struct {
	faculty    string
	department string
	student    string
	userID     string
}

var (
	facultyReq    services.FacultyRequest
	levelReq      services.LevelRequest
	departmentReq services.DepartmentRequest
	courseReq     services.CourseRequest
	lecturerReq   services.LecturerRequest
	studentReq    services.StudentRequest
	classroomReq  services.ClassroomRequest
	enrollmentReq services.EnrollmentRequest
)

var createCmd = &cobra.Command{Use: "create", Short: "Create academic resources"}
var getCmd = &cobra.Command{Use: "get", Short: "Show a single academic resource"}
var updateCmd = &cobra.Command{Use: "update", Short: "Update lecturers and students"}
var deleteCmd = &cobra.Command{Use: "delete", Short: "Delete classrooms and enrollments"}

// serviceCmd runs call with a ready app and renders what it returns.
func serviceCmd[T any](use, short string, args cobra.PositionalArgs, headers []string, row func(T) []string, call func(ctx context.Context, svc *services.Services, args []string) result.Result[T]) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			v, err := unwrap(call(cmd.Context(), a.Services, args))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, headers, [][]string{row(v)})
		},
	}
}

var (
	facultyHeaders    = []string{"ID", "CODE", "NAME"}
	levelHeaders      = []string{"ID", "NAME"}
	departmentHeaders = []string{"ID", "CODE", "NAME"}
	courseHeaders     = []string{"ID", "CODE", "TITLE", "CREDITS"}
	lecturerHeaders   = []string{"ID", "NAME", "EMAIL"}
	studentHeaders    = []string{"ID", "MATRICULATION", "NAME", "EMAIL"}
	classroomHeaders  = []string{"ID", "NAME", "CAPACITY"}
	enrollmentHeaders = []string{"STUDENT", "COURSE"}
)

func facultyRow(f services.Faculty) []string       { return []string{f.ID, f.Code, f.Name} }
func levelRow(l services.Level) []string           { return []string{l.ID, l.Name} }
func departmentRow(d services.Department) []string { return []string{d.ID, d.Code, d.Name} }
func courseRow(c services.Course) []string {
	return []string{c.ID, c.Code, c.Title, strconv.Itoa(c.CreditUnits)}
}
func lecturerRow(l services.Lecturer) []string {
	return []string{l.ID, l.FirstName + " " + l.LastName, l.Email}
}
func studentRow(s services.Student) []string {
	return []string{s.UserID, s.MatriculationNumber, s.FullName(), s.Email}
}
func classroomRow(c services.Classroom) []string {
	return []string{c.ID, c.Name, strconv.Itoa(c.Capacity)}
}
func enrollmentRow(e services.Enrollment) []string { return []string{e.StudentID, e.CourseID} }

func init() {
	id := cobra.ExactArgs(1)
	none := cobra.NoArgs

	// create
	createFaculty := serviceCmd("faculty", "Create a faculty", none, facultyHeaders, facultyRow,
		func(ctx context.Context, svc *services.Services, _ []string) result.Result[services.Faculty] {
			return svc.Faculties.Create(ctx, facultyReq)
		})
	createFaculty.Flags().StringVar(&facultyReq.Name, "name", "", "faculty name")
	createFaculty.Flags().StringVar(&facultyReq.Code, "code", "", "faculty code")

	createLevel := serviceCmd("level", "Create a level", none, levelHeaders, levelRow,
		func(ctx context.Context, svc *services.Services, _ []string) result.Result[services.Level] {
			return svc.Levels.Create(ctx, levelReq)
		})
	createLevel.Flags().StringVar(&levelReq.Name, "name", "", "level name")

	createDepartment := serviceCmd("department", "Create a department in a faculty", none, departmentHeaders, departmentRow,
		func(ctx context.Context, svc *services.Services, _ []string) result.Result[services.Department] {
			return svc.Departments.Create(ctx, manageOpts.faculty, departmentReq)
		})
	createDepartment.Flags().StringVar(&manageOpts.faculty, "faculty", "", "faculty id")
	createDepartment.Flags().StringVar(&departmentReq.Name, "name", "", "department name")
	createDepartment.Flags().StringVar(&departmentReq.Code, "code", "", "department code")
	_ = createDepartment.MarkFlagRequired("faculty")

	createCourse := serviceCmd("course", "Create a course in a department", none, courseHeaders, courseRow,
		func(ctx context.Context, svc *services.Services, _ []string) result.Result[services.Course] {
			return svc.Courses.Create(ctx, manageOpts.department, courseReq)
		})
	createCourse.Flags().StringVar(&manageOpts.department, "department", "", "department id")
	createCourse.Flags().StringVar(&courseReq.Title, "title", "", "course title")
	createCourse.Flags().StringVar(&courseReq.Code, "code", "", "course code")
	createCourse.Flags().StringVar(&courseReq.Description, "description", "", "course description")
	createCourse.Flags().IntVar(&courseReq.CreditUnits, "credits", 0, "credit units")
	createCourse.Flags().StringVar(&courseReq.LevelID, "level", "", "level id")
	_ = createCourse.MarkFlagRequired("department")

	createLecturer := serviceCmd("lecturer", "Create a lecturer", none, lecturerHeaders, lecturerRow,
		func(ctx context.Context, svc *services.Services, _ []string) result.Result[services.Lecturer] {
			return svc.Lecturers.Create(ctx, lecturerReq)
		})
	updateLecturer := serviceCmd("lecturer <id>", "Update a lecturer", id, lecturerHeaders, lecturerRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Lecturer] {
			return svc.Lecturers.Update(ctx, args[0], lecturerReq)
		})
	for _, c := range []*cobra.Command{createLecturer, updateLecturer} {
		c.Flags().StringVar(&lecturerReq.FirstName, "first-name", "", "first name")
		c.Flags().StringVar(&lecturerReq.LastName, "last-name", "", "last name")
		c.Flags().StringVar(&lecturerReq.Email, "email", "", "email")
		c.Flags().StringVar(&lecturerReq.PhoneNumber, "phone", "", "phone number")
		c.Flags().StringVar(&lecturerReq.DepartmentID, "department", "", "department id")
	}

	createStudent := serviceCmd("student", "Create the student profile of a user", none, studentHeaders, studentRow,
		func(ctx context.Context, svc *services.Services, _ []string) result.Result[services.Student] {
			return svc.Students.Create(ctx, manageOpts.userID, studentReq)
		})
	createStudent.Flags().StringVar(&manageOpts.userID, "user", "", "user id")
	_ = createStudent.MarkFlagRequired("user")
	updateStudent := serviceCmd("student <id>", "Update a student", id, studentHeaders, studentRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Student] {
			return svc.Students.Update(ctx, args[0], studentReq)
		})
	for _, c := range []*cobra.Command{createStudent, updateStudent} {
		c.Flags().StringVar(&studentReq.FirstName, "first-name", "", "first name")
		c.Flags().StringVar(&studentReq.LastName, "last-name", "", "last name")
		c.Flags().StringVar(&studentReq.Email, "email", "", "email")
		c.Flags().StringVar(&studentReq.MatriculationNumber, "matriculation", "", "matriculation number")
		c.Flags().StringVar(&studentReq.DepartmentID, "department", "", "department id")
		c.Flags().StringVar(&studentReq.LevelID, "level", "", "level id")
		c.Flags().StringVar(&studentReq.ProfileImageURL, "profile-image", "", "profile image URL")
	}

	createClassroom := serviceCmd("classroom", "Create a classroom in a faculty", none, classroomHeaders, classroomRow,
		func(ctx context.Context, svc *services.Services, _ []string) result.Result[services.Classroom] {
			return svc.Classrooms.Create(ctx, manageOpts.faculty, classroomReq)
		})
	cf := createClassroom.Flags()
	cf.StringVar(&manageOpts.faculty, "faculty", "", "faculty id")
	cf.StringVar(&classroomReq.Name, "name", "", "classroom name")
	cf.IntVar(&classroomReq.Capacity, "capacity", 0, "seats")
	cf.Float64Var(&classroomReq.TopLeftLat, "top-left-lat", 0, "top left corner latitude")
	cf.Float64Var(&classroomReq.TopLeftLon, "top-left-lon", 0, "top left corner longitude")
	cf.Float64Var(&classroomReq.TopRightLat, "top-right-lat", 0, "top right corner latitude")
	cf.Float64Var(&classroomReq.TopRightLon, "top-right-lon", 0, "top right corner longitude")
	cf.Float64Var(&classroomReq.BottomLeftLat, "bottom-left-lat", 0, "bottom left corner latitude")
	cf.Float64Var(&classroomReq.BottomLeftLon, "bottom-left-lon", 0, "bottom left corner longitude")
	cf.Float64Var(&classroomReq.BottomRightLat, "bottom-right-lat", 0, "bottom right corner latitude")
	cf.Float64Var(&classroomReq.BottomRightLon, "bottom-right-lon", 0, "bottom right corner longitude")
	_ = createClassroom.MarkFlagRequired("faculty")

	createEnrollment := serviceCmd("enrollment", "Enroll a student in a course", none, enrollmentHeaders, enrollmentRow,
		func(ctx context.Context, svc *services.Services, _ []string) result.Result[services.Enrollment] {
			return svc.Enrollments.Create(ctx, manageOpts.student, enrollmentReq)
		})
	createEnrollment.Flags().StringVar(&manageOpts.student, "student", "", "student user id")
	createEnrollment.Flags().StringVar(&enrollmentReq.CourseID, "course", "", "course id")
	_ = createEnrollment.MarkFlagRequired("student")

	createCmd.AddCommand(createFaculty, createLevel, createDepartment, createCourse, createLecturer, createStudent, createClassroom, createEnrollment)
	updateCmd.AddCommand(updateLecturer, updateStudent)

	// get
	getFaculty := serviceCmd("faculty <id>", "Show a faculty", id, facultyHeaders, facultyRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Faculty] {
			return svc.Faculties.Get(ctx, args[0])
		})
	getLevel := serviceCmd("level <id>", "Show a level", id, levelHeaders, levelRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Level] {
			return svc.Levels.Get(ctx, args[0])
		})
	getDepartment := serviceCmd("department <id>", "Show a department", id, departmentHeaders, departmentRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Department] {
			return svc.Departments.Get(ctx, manageOpts.faculty, args[0])
		})
	getDepartment.Flags().StringVar(&manageOpts.faculty, "faculty", "", "faculty id")
	_ = getDepartment.MarkFlagRequired("faculty")
	getCourse := serviceCmd("course <id>", "Show a course", id, courseHeaders, courseRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Course] {
			return svc.Courses.Get(ctx, manageOpts.department, args[0])
		})
	getCourse.Flags().StringVar(&manageOpts.department, "department", "", "department id")
	_ = getCourse.MarkFlagRequired("department")
	getClassroom := serviceCmd("classroom <id>", "Show a classroom", id, classroomHeaders, classroomRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Classroom] {
			return svc.Classrooms.Get(ctx, manageOpts.faculty, args[0])
		})
	getClassroom.Flags().StringVar(&manageOpts.faculty, "faculty", "", "faculty id")
	_ = getClassroom.MarkFlagRequired("faculty")
	getLecturer := serviceCmd("lecturer <id>", "Show a lecturer", id, lecturerHeaders, lecturerRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Lecturer] {
			return svc.Lecturers.Get(ctx, args[0])
		})
	getStudent := serviceCmd("student <id>", "Show a student", id, studentHeaders, studentRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Student] {
			return svc.Students.Get(ctx, args[0])
		})
	getEnrollment := serviceCmd("enrollment <course-id>", "Show a student's enrollment in a course", id, enrollmentHeaders, enrollmentRow,
		func(ctx context.Context, svc *services.Services, args []string) result.Result[services.Enrollment] {
			return svc.Enrollments.Get(ctx, manageOpts.student, args[0])
		})
	getEnrollment.Flags().StringVar(&manageOpts.student, "student", "", "student user id")
	_ = getEnrollment.MarkFlagRequired("student")
	getCmd.AddCommand(getFaculty, getLevel, getDepartment, getCourse, getClassroom, getLecturer, getStudent, getEnrollment)

	// delete
	deleteClassroom := deletionCmd("classroom <id>", "Delete a classroom", func(ctx context.Context, svc *services.Services, id string) result.Result[services.Empty] {
		return svc.Classrooms.Delete(ctx, manageOpts.faculty, id)
	})
	deleteClassroom.Flags().StringVar(&manageOpts.faculty, "faculty", "", "faculty id")
	_ = deleteClassroom.MarkFlagRequired("faculty")
	deleteEnrollment := deletionCmd("enrollment <course-id>", "Remove a student from a course", func(ctx context.Context, svc *services.Services, id string) result.Result[services.Empty] {
		return svc.Enrollments.Delete(ctx, manageOpts.student, id)
	})
	deleteEnrollment.Flags().StringVar(&manageOpts.student, "student", "", "student user id")
	_ = deleteEnrollment.MarkFlagRequired("student")
	deleteCmd.AddCommand(deleteClassroom, deleteEnrollment)

	rootCmd.AddCommand(createCmd, getCmd, updateCmd, deleteCmd)
}

func deletionCmd(use, short string, call func(ctx context.Context, svc *services.Services, id string) result.Result[services.Empty]) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := unwrap(call(cmd.Context(), a.Services, args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
