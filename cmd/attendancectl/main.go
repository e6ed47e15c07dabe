// Command attendancectl runs one-off attendance maintenance against the database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance/migrations"
	"github.com/spf13/cobra"
)

const appVersion = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "attendancectl",
		Short:         "Attendance maintenance (migrations, recompute, preview, tokens)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = appVersion
	cmd.SetVersionTemplate("attendancectl v{{.Version}}\n")

	cmd.AddCommand(
		newMigrateCmd(),
		newRecomputeCmd(),
		newPreviewCmd(),
		newRemindCmd(),
		newTokenCmd(),
	)
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := migrations.Apply(cmd.Context(), a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newRecomputeCmd() *cobra.Command {
	var (
		employeeID int64
		date       string
		workTimeID int64
	)

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Re-run adjudication for a stored attendance day",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := attendance.RecomputeRequest{
				EmployeeID:     employeeID,
				AttendanceDate: date,
				WorkTimeID:     optionalID(workTimeID),
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.attendance.Recompute(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().Int64Var(&employeeID, "employee", 0, "Employee ID")
	cmd.Flags().StringVar(&date, "date", "", "Attendance date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&workTimeID, "work-time", 0, "Force this work time instead of resolving the shift")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var (
		employeeID int64
		date       string
		workTimeID int64
		punches    [4]string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Evaluate hypothetical punches without saving anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := attendance.PreviewRequest{
				EmployeeID:     employeeID,
				AttendanceDate: date,
				WorkTimeID:     optionalID(workTimeID),
				PunchInput: attendance.PunchInput{
					TimeInMorning:    optionalString(punches[0]),
					TimeOutMorning:   optionalString(punches[1]),
					TimeInAfternoon:  optionalString(punches[2]),
					TimeOutAfternoon: optionalString(punches[3]),
				},
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.attendance.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().Int64Var(&employeeID, "employee", 0, "Employee ID")
	cmd.Flags().StringVar(&date, "date", "", "Attendance date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&workTimeID, "work-time", 0, "Force this work time instead of resolving the shift")
	cmd.Flags().StringVar(&punches[0], "in-morning", "", "Morning time in (HH:MM)")
	cmd.Flags().StringVar(&punches[1], "out-morning", "", "Morning time out (HH:MM)")
	cmd.Flags().StringVar(&punches[2], "in-afternoon", "", "Afternoon time in (HH:MM)")
	cmd.Flags().StringVar(&punches[3], "out-afternoon", "", "Afternoon time out (HH:MM)")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newRemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send the pending late request digest to HR now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.lateRequests.RemindPending(cmd.Context())
		},
	}
}

// newTokenCmd mints a token from the shared secret. Used for the biometrics
// importer account and for local testing.
func newTokenCmd() *cobra.Command {
	var (
		userID     string
		employeeID int64
		role       string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with JWT_SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := user.Role(role)
			if _, ok := user.RolePermissions[r]; !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be > 0")
			}

			secret := os.Getenv("JWT_SECRET_KEY")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET_KEY is required")
			}

			token, expiresAt, err := jwt.NewJWTService(secret).GenerateAccessToken(userID, optionalID(employeeID), r, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"access_token": token,
				"expires_at":   expiresAt,
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Subject user ID")
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "Employee ID carried in the token (optional)")
	cmd.Flags().StringVar(&role, "role", string(user.RoleImporter), "Role: admin, hr, employee or importer")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
