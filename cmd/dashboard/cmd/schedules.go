package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"semaphore/dashboard/internal/services"
)

var scheduleReq services.ClassScheduleRequest

var scheduleHeaders = []string{"ID", "COURSE", "CLASSROOM", "DAY", "START", "END"}

func scheduleRow(s services.ClassSchedule) []string {
	return []string{s.ID, s.CourseID, s.ClassroomID, s.DayOfWeek, s.StartTime, s.EndTime}
}

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "Manage class schedules",
}

var scheduleGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a class schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		s, err := unwrap(a.Services.ClassSchedules.Get(cmd.Context(), args[0]))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), s, scheduleHeaders, [][]string{scheduleRow(s)})
	},
}

var scheduleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a class schedule",
	Example: `  dashboard schedules create --course c1 --classroom r1 --day Monday --start 09:00 --end 11:00`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		s, err := unwrap(a.Services.ClassSchedules.Create(cmd.Context(), scheduleReq))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), s, scheduleHeaders, [][]string{scheduleRow(s)})
	},
}

var scheduleUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a class schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		s, err := unwrap(a.Services.ClassSchedules.Update(cmd.Context(), args[0], scheduleReq))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), s, scheduleHeaders, [][]string{scheduleRow(s)})
	},
}

var scheduleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a class schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if _, err := unwrap(a.Services.ClassSchedules.Delete(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schedule %s deleted\n", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{scheduleCreateCmd, scheduleUpdateCmd} {
		f := c.Flags()
		f.StringVar(&scheduleReq.CourseID, "course", "", "course id")
		f.StringVar(&scheduleReq.ClassroomID, "classroom", "", "classroom id")
		f.StringVar(&scheduleReq.LecturerID, "lecturer", "", "lecturer id")
		f.StringVar(&scheduleReq.DayOfWeek, "day", "", "day of week, e.g. Monday")
		f.StringVar(&scheduleReq.StartTime, "start", "", "start time HH:MM")
		f.StringVar(&scheduleReq.EndTime, "end", "", "end time HH:MM")
	}
	schedulesCmd.AddCommand(scheduleGetCmd, scheduleCreateCmd, scheduleUpdateCmd, scheduleDeleteCmd)
	rootCmd.AddCommand(schedulesCmd)
}
