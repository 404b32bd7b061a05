package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tshepom/upcoming"
	"github.com/tshepom/upcoming/calendar"
	"github.com/tshepom/upcoming/export"
	"github.com/tshepom/upcoming/occurrence"
	"github.com/tshepom/upcoming/recurrence"
)

const dateFormat = "2006-01-02"

func init() {
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the occurrences of all events within a period",
		Run:   runUpcoming,
	}
	cmd.Flags().StringP("period", "p", "WEEK", "Period: DAY, WEEK, MONTH, YEAR or CUSTOM")
	cmd.Flags().String("from", "", "Custom period start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Custom period end date (YYYY-MM-DD)")
	cmd.Flags().StringP("calendar", "c", "", "Restrict to one calendar by name")
	cmd.Flags().StringP("format", "f", "table", "Output format: table, json, ics or xcal")

	RootCmd.AddCommand(cmd)
}

func runUpcoming(cmd *cobra.Command, args []string) {
	periodStr, _ := cmd.Flags().GetString("period")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	calendarName, _ := cmd.Flags().GetString("calendar")
	format, _ := cmd.Flags().GetString("format")

	period, err := upcoming.ParsePeriod(strings.ToUpper(periodStr))
	if err != nil {
		exitErr("parse period", err)
	}

	var custom *calendar.DateRange
	if fromStr != "" || toStr != "" {
		custom = &calendar.DateRange{}
		if fromStr != "" {
			if custom.From, err = time.Parse(dateFormat, fromStr); err != nil {
				exitErr("parse from date", err)
			}
		}
		if toStr != "" {
			if custom.To, err = time.Parse(dateFormat, toStr); err != nil {
				exitErr("parse to date", err)
			}
		}
	}

	store, cfg, logger, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.Close()

	if calendarName == "" {
		calendarName = cfg.DefaultCalendar
	}

	engine := recurrence.NewEngine()
	defer engine.Close()

	occurrences, err := upcoming.Query(cmd.Context(), upcoming.QueryParams{
		Period:   period,
		Calendar: calendarName,
		Custom:   custom,
	}, store, store, engine)
	if err != nil {
		exitErr("query upcoming", err)
	}
	logger.Debug("query done", "period", period, "occurrences", len(occurrences))

	if err := printOccurrences(occurrences, format); err != nil {
		exitErr("render output", err)
	}
}

func printOccurrences(occurrences []calendar.Occurrence, format string) error {
	switch format {
	case "table":
		for _, occ := range occurrences {
			status := ""
			if occ.Cancelled {
				status = "\tCANCELLED"
			}
			fmt.Printf("%s\t%s → %s\t%s%s\n",
				occ.Title,
				occ.Start.Format(time.RFC3339), occ.End.Format(time.RFC3339),
				occurrence.KeyFor(occ), status)
		}
		return nil

	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(occurrences)

	case "ics":
		return export.EncodeICS(os.Stdout, occurrences)

	case "xcal":
		doc := export.XCal(occurrences)
		doc.Indent(2)
		_, err := doc.WriteTo(os.Stdout)
		return err

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
