package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"scms_backend/internal/app"
	"scms_backend/internal/model"
	"scms_backend/internal/service"

	"github.com/spf13/cobra"
)

var reportMonths int

var reportNames = []string{"statistics", "overview", "categories", "trends", "universities", "priorities", "metrics", "escalations"}

var reportCmd = &cobra.Command{
	Use:       "report <name>",
	Short:     "Print a report computed from the stored complaints",
	Long:      `Available reports: statistics, overview, categories, trends, universities, priorities, metrics, escalations.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: reportNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(false, func(st *app.OfflineStore) error {
			reports := service.NewReportService(st.Complaints, nil)

			var data interface{}
			switch args[0] {
			case "statistics":
				data = reports.Statistics()
			case "overview":
				data = reports.AdminStats()
			case "categories":
				groups := reports.Categories()
				if !structuredOutput() {
					printGroups(groups)
					return nil
				}
				data = groups
			case "trends":
				data = reports.Trends(reportMonths)
			case "universities":
				groups := reports.Universities()
				if !structuredOutput() {
					printGroups(groups)
					return nil
				}
				data = groups
			case "priorities":
				data = reports.Priorities()
			case "metrics":
				data = reports.Metrics()
			case "escalations":
				data = reports.Escalations()
			}
			return printStructured(os.Stdout, data)
		})
	},
}

func printGroups(groups []model.GroupPerformance) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTOTAL\tRESOLVED\tPENDING\tESCALATED\tRATE\tAVG DAYS")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d%%\t%d\n",
			g.Name, g.Total, g.Resolved, g.Pending, g.Escalated, g.ResolutionRate, g.AvgResolutionTime)
	}
	w.Flush()
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List overdue complaints grouped by urgency",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(false, func(st *app.OfflineStore) error {
			summary := service.CollectReminders(st.Complaints.Snapshot())
			if structuredOutput() {
				return printStructured(os.Stdout, summary)
			}

			fmt.Printf("critical: %d  high: %d  moderate: %d\n\n", summary.Critical, summary.High, summary.Moderate)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDAYS\tURGENCY\tSTATUS\tLEVEL\tSTUDENT\tCATEGORY")
			for _, it := range summary.Items {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
					it.ComplaintID, it.DaysOpened, it.Urgency.Tier, it.Status,
					it.EscalationLevel.Label(), it.StudentName, it.Category)
			}
			return w.Flush()
		})
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportMonths, "months", service.DefaultTrendMonths, "number of months for the trends report")
}
