package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tshepom/upcoming/occurrence"
)

func init() {
	occurrenceCmd := &cobra.Command{
		Use:   "occurrence",
		Short: "Edit single occurrences of recurring events",
	}

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit or cancel one occurrence, by id or by key",
		Run:   runOccurrenceEdit,
	}
	editCmd.Flags().Int64P("event", "e", 0, "Event id")
	editCmd.Flags().Int64("id", 0, "Persisted occurrence id")
	editCmd.Flags().StringP("key", "k", "", "Occurrence key, as printed by 'upcoming'")
	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().String("description", "", "New description")
	editCmd.Flags().String("start", "", "New start time (RFC 3339)")
	editCmd.Flags().String("end", "", "New end time (RFC 3339)")
	editCmd.Flags().Bool("cancelled", false, "Cancel this occurrence")
	editCmd.MarkFlagRequired("event")

	occurrenceCmd.AddCommand(editCmd)
	RootCmd.AddCommand(occurrenceCmd)
}

func runOccurrenceEdit(cmd *cobra.Command, args []string) {
	eventID, _ := cmd.Flags().GetInt64("event")
	occurrenceID, _ := cmd.Flags().GetInt64("id")
	key, _ := cmd.Flags().GetString("key")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	cancelled, _ := cmd.Flags().GetBool("cancelled")

	edit := occurrence.Edit{
		OccurrenceID: occurrenceID,
		Key:          key,
		Title:        title,
		Description:  description,
		Cancelled:    cancelled,
	}

	var err error
	if startStr != "" {
		if edit.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
			exitErr("parse start", err)
		}
	}
	if endStr != "" {
		if edit.End, err = time.Parse(time.RFC3339, endStr); err != nil {
			exitErr("parse end", err)
		}
	}

	store, _, logger, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.Close()

	event, err := store.GetEvent(cmd.Context(), eventID)
	if err != nil {
		exitErr("load event", err)
	}

	saved, err := occurrence.ResolveEdit(cmd.Context(), store, *event, edit)
	if err != nil {
		exitErr("edit occurrence", err)
	}
	logger.Info("occurrence saved", "event", event.ID, "occurrence", saved.ID, "cancelled", saved.Cancelled)
	fmt.Printf("occurrence %d of event %d saved (key %s)\n", saved.ID, event.ID, occurrence.KeyFor(saved))
}
