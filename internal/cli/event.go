package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/recurrence"
)

func init() {
	eventCmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create an event, optionally recurring",
		Run:   runEventAdd,
	}
	addCmd.Flags().Int64P("calendar", "c", 0, "Calendar id")
	addCmd.Flags().StringP("title", "t", "", "Event title")
	addCmd.Flags().String("description", "", "Event description")
	addCmd.Flags().String("start", "", "Start time (RFC 3339)")
	addCmd.Flags().String("end", "", "End time (RFC 3339)")
	addCmd.Flags().String("recurrence", "", `Recurrence spec as JSON, e.g. {"frequency":"DAILY","count":5}`)
	addCmd.Flags().Bool("all-day", false, "All-day event")
	addCmd.MarkFlagRequired("calendar")
	addCmd.MarkFlagRequired("title")
	addCmd.MarkFlagRequired("start")
	addCmd.MarkFlagRequired("end")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Run:   runEventList,
	}

	eventCmd.AddCommand(addCmd, listCmd)
	RootCmd.AddCommand(eventCmd)
}

func runEventAdd(cmd *cobra.Command, args []string) {
	calendarID, _ := cmd.Flags().GetInt64("calendar")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	recurrenceJSON, _ := cmd.Flags().GetString("recurrence")
	allDay, _ := cmd.Flags().GetBool("all-day")

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		exitErr("parse start", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		exitErr("parse end", err)
	}

	event := calendar.Event{
		CalendarID:  calendarID,
		Title:       title,
		Description: description,
		Start:       start,
		End:         end,
		AllDay:      allDay,
	}

	if recurrenceJSON != "" {
		var spec calendar.RecurrenceSpec
		if err := json.Unmarshal([]byte(recurrenceJSON), &spec); err != nil {
			exitErr("parse recurrence", err)
		}
		if err := recurrence.ValidateAt(&spec, time.Now()); err != nil {
			exitErr("validate recurrence", err)
		}
		event.Recurrence = &spec
	}

	store, _, logger, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.Close()

	if err := store.CreateEvent(cmd.Context(), &event); err != nil {
		exitErr("create event", err)
	}
	logger.Info("event created", "id", event.ID, "title", event.Title, "recurring", event.Recurrence != nil)
	fmt.Printf("event %d: %s\n", event.ID, event.Title)
}

func runEventList(cmd *cobra.Command, args []string) {
	store, _, _, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.Close()

	events, err := store.ListEvents(cmd.Context())
	if err != nil {
		exitErr("list events", err)
	}
	for _, event := range events {
		recurring := ""
		if event.Recurrence != nil {
			recurring = fmt.Sprintf(" (recurring %s)", event.Recurrence.Frequency)
		}
		fmt.Printf("%d\t%s\t%s → %s%s\n",
			event.ID, event.Title,
			event.Start.Format(time.RFC3339), event.End.Format(time.RFC3339),
			recurring)
	}
}
