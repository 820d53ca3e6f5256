// Package main 投诉系统运维命令行，直接操作持久化的投诉快照。
// 服务运行时修改快照会被服务下一次保存覆盖，修改类命令应在停机时执行。
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"scms_backend/internal/app"
	"scms_backend/internal/config"
	"scms_backend/internal/util"
	"scms_backend/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configDir    string
	outputFormat string
	debug        bool
	timeout      time.Duration

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if util.IsValidationError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scms-admin",
	Short: "Student complaint management operator CLI",
	Long: `Operator commands for the student complaint management backend.

It provides:
  - Reports computed from the persisted complaints
  - Manual aging sweeps
  - Status changes, department assignment and escalation
  - Urgency classification for a given age
  - Database migration and status counts`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		logger.InitConsole(debug)

		loaded, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "config directory")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "storage operation timeout")

	rootCmd.AddCommand(reportCmd, remindersCmd, sweepCmd, showCmd, statusCmd, assignCmd, escalateCmd, urgencyCmd,
		migrateCmd, dbStatsCmd)
}

// withStore 打开存储执行 fn，write 为 true 时执行成功后落盘
func withStore(write bool, fn func(st *app.OfflineStore) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	st, err := app.OpenOfflineStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := fn(st); err != nil {
		return err
	}
	if !write {
		return nil
	}
	if err := st.Flush(ctx); err != nil {
		return fmt.Errorf("failed to save complaints: %w", err)
	}
	return nil
}

// printStructured json 和 yaml 使用相同的字段名
func printStructured(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if outputFormat != "yaml" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func structuredOutput() bool {
	return outputFormat == "json" || outputFormat == "yaml"
}
