package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"scms_backend/internal/app"
	"scms_backend/internal/repository"
	"scms_backend/internal/util"
	"scms_backend/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the complaints table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *gorm.DB) error {
			return database.Migrate(db.WithContext(ctx))
		})
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Count stored complaints by status directly in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *gorm.DB) error {
			rows, err := repository.NewComplaintRepository(db).CountByStatus(ctx)
			if err != nil {
				return err
			}
			if structuredOutput() {
				return printStructured(os.Stdout, rows)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tCOUNT")
			var total int64
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%d\n", r.Status, r.Count)
				total += r.Count
			}
			fmt.Fprintf(w, "TOTAL\t%d\n", total)
			return w.Flush()
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single complaint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(false, func(st *app.OfflineStore) error {
			c, err := st.Complaints.Get(args[0])
			if err != nil {
				return err
			}
			if structuredOutput() {
				return printComplaint(c)
			}

			fmt.Printf("%s  %s  %s\n", c.ID, c.Status, c.EscalationLevel.Label())
			fmt.Printf("student:    %s (%s), %s\n", c.StudentName, c.StudentID, c.University)
			fmt.Printf("category:   %s  priority: %s\n", c.Category, c.Priority)
			fmt.Printf("submitted:  %s  updated: %s  days open: %d\n",
				c.DateSubmitted.Format(util.DateFormat), c.LastUpdated.Format(util.DateFormat), c.DaysOpened)
			if c.IsAssigned() {
				fmt.Printf("department: %s (%s) by %s", c.AssignedDepartment, c.AssignedDepartmentHead, c.DepartmentAssignedBy)
				if c.DepartmentAssignedAt != nil {
					fmt.Printf(" at %s", c.DepartmentAssignedAt.Format(util.TimeFormat))
				}
				fmt.Println()
			}
			fmt.Printf("\n%s\n", c.Description)
			for _, cm := range c.Comments {
				fmt.Printf("\n[%s] %s (%s): %s\n", cm.Timestamp.Format(util.TimeFormat), cm.Author, cm.Role, cm.Message)
			}
			return nil
		})
	},
}

// withDB 直接连接数据库，不要求 persistence.type 为 database
func withDB(fn func(ctx context.Context, db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.InitDB(&cfg.Database, debug)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(ctx, db)
}
