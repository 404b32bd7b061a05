package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tshepom/upcoming/calendar"
)

func init() {
	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Manage calendars",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a calendar",
		Run:   runCalendarAdd,
	}
	addCmd.Flags().StringP("name", "n", "", "Calendar name")
	addCmd.Flags().String("color", "", "Display color")
	addCmd.MarkFlagRequired("name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List calendars",
		Run:   runCalendarList,
	}

	calendarCmd.AddCommand(addCmd, listCmd)
	RootCmd.AddCommand(calendarCmd)
}

func runCalendarAdd(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	color, _ := cmd.Flags().GetString("color")

	store, _, logger, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.Close()

	cal := calendar.Calendar{Name: name, Color: color}
	if err := store.CreateCalendar(cmd.Context(), &cal); err != nil {
		exitErr("create calendar", err)
	}
	logger.Info("calendar created", "id", cal.ID, "name", cal.Name)
	fmt.Printf("calendar %d: %s\n", cal.ID, cal.Name)
}

func runCalendarList(cmd *cobra.Command, args []string) {
	store, _, _, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.Close()

	calendars, err := store.ListCalendars(cmd.Context())
	if err != nil {
		exitErr("list calendars", err)
	}
	for _, cal := range calendars {
		fmt.Printf("%d\t%s\t%s\n", cal.ID, cal.Name, cal.Color)
	}
}
