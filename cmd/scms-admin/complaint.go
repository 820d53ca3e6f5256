package main

import (
	"fmt"
	"os"

	"scms_backend/internal/app"
	"scms_backend/internal/model"
	"scms_backend/internal/service"

	"github.com/spf13/cobra"
)

var (
	actorName    string
	headOverride string
	urgencyDays  int
	urgencyState string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Recompute days opened for all open complaints",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(true, func(st *app.OfflineStore) error {
			changed := st.Complaints.SweepAging(st.Complaints.Now())
			fmt.Printf("aged %d of %d complaints\n", changed, st.Complaints.Count())
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change the status of a complaint",
	Long:  `Status must be one of: Pending, "In Progress", Resolved, Escalated.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(true, func(st *app.OfflineStore) error {
			c, err := st.Complaints.UpdateStatus(args[0], model.ComplaintStatus(args[1]), actorName, 0)
			if err != nil {
				return err
			}
			return printComplaint(c)
		})
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <id> [department]",
	Short: "Assign a complaint to a department",
	Long:  `When the department is omitted the one suggested for the complaint's category is used.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(true, func(st *app.OfflineStore) error {
			var dept model.DepartmentKey
			if len(args) == 2 {
				dept = model.DepartmentKey(args[1])
			} else {
				c, err := st.Complaints.Get(args[0])
				if err != nil {
					return err
				}
				dept = service.SuggestDepartment(c.Category)
			}

			c, err := st.Complaints.AssignDepartment(args[0], service.AssignInput{
				Department: dept,
				Head:       headOverride,
				AssignedBy: actorName,
			})
			if err != nil {
				return err
			}
			return printComplaint(c)
		})
	},
}

var escalateCmd = &cobra.Command{
	Use:   "escalate <id>",
	Short: "Escalate a complaint one level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(true, func(st *app.OfflineStore) error {
			c, err := st.Complaints.Escalate(args[0], actorName, 0)
			if err != nil {
				return err
			}
			return printComplaint(c)
		})
	},
}

var urgencyCmd = &cobra.Command{
	Use:   "urgency",
	Short: "Classify urgency for a number of days opened",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := model.ComplaintStatus(urgencyState)
		if !status.Valid() {
			return fmt.Errorf("invalid status %q", urgencyState)
		}
		u := service.ClassifyUrgency(urgencyDays, status)
		if structuredOutput() {
			return printStructured(os.Stdout, u)
		}
		fmt.Printf("tier: %s\nlabel: %s\nrank: %d\nreminders: %d\n", u.Tier, u.Label, u.Rank, u.ReminderCount)
		return nil
	},
}

func printComplaint(c model.Complaint) error {
	if structuredOutput() {
		return printStructured(os.Stdout, service.NewComplaintView(c))
	}
	fmt.Printf("%s  %s  %s  department=%s  version=%d\n",
		c.ID, c.Status, c.EscalationLevel.Label(), c.AssignedDepartment, c.Version)
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{statusCmd, assignCmd, escalateCmd} {
		cmd.Flags().StringVar(&actorName, "actor", "System Administrator", "name recorded as the acting administrator")
	}
	assignCmd.Flags().StringVar(&headOverride, "head", "", "override the department head name")

	urgencyCmd.Flags().IntVar(&urgencyDays, "days", 0, "days opened")
	urgencyCmd.Flags().StringVar(&urgencyState, "status", string(model.StatusPending), "complaint status")
}
