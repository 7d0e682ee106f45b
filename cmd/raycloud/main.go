package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ketr501215/Ray-Cloud-Web/config"
	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/database"
	applogger "github.com/ketr501215/Ray-Cloud-Web/pkg/logger"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "raycloud",
		Short:         "Ray Cloud 管理工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认 ./config/config.yaml）")

	root.AddCommand(newSemesterCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	return root
}

// ── semester ──

func newSemesterCmd(configPath *string) *cobra.Command {
	sem := &cobra.Command{
		Use:   "semester",
		Short: "学期换算",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			sc, err := config.LoadSemester(*configPath)
			if err != nil {
				return err
			}
			if err := semester.SetLocation(sc.Timezone); err != nil {
				return fmt.Errorf("semester.timezone 无效: %w", err)
			}
			return nil
		},
	}
	svc := service.NewSemesterService()

	var date string
	var asJSON bool

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "显示指定日期所在学期",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			resp := svc.Current(now)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s ~ %s\n", resp.ID, resp.Label, resp.StartDate, resp.EndDate)
			return nil
		},
	}

	rangeCmd := &cobra.Command{
		Use:   "range <id>",
		Short: "显示学期起止日期，如 1142",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := svc.Range(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[0])
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s ~ %s\t%d天\n", resp.ID, resp.StartDate, resp.EndDate, resp.Days)
			return nil
		},
	}

	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "显示学期进度与教学周",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			resp := svc.Progress(now)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d%%\t第%d週\n", resp.ID, resp.Progress, resp.Week)
			return nil
		},
	}

	sem.PersistentFlags().StringVar(&date, "date", "", "基准日期 YYYY-MM-DD（默认今天）")
	sem.PersistentFlags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	sem.AddCommand(currentCmd, rangeCmd, progressCmd)
	return sem
}

func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().In(semester.Location()), nil
	}
	t, err := semester.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的 --date %q: %w", raw, err)
	}
	return t, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ── migrate ──

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "按配置的数据库驱动执行迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := applogger.NewLogger(&cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
			if err != nil {
				return fmt.Errorf("数据库连接失败: %w", err)
			}
			if sqlDB, _ := db.DB(); sqlDB != nil {
				defer sqlDB.Close()
			}

			if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrated (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
