package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/sheetcache/purchase"
)

// cliUserAgent identifies CLI mutations in the audit log.
const cliUserAgent = "ezbook-cli"

func (c *cli) booksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List the book catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := c.app.repo.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			printBooks(cmd.OutOrStdout(), books)
			return nil
		},
	}
}

func (c *cli) studentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "students",
		Short: "List the class roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			students, err := c.app.repo.ListStudents(cmd.Context())
			if err != nil {
				return err
			}
			printStudents(cmd.OutOrStdout(), students)
			return nil
		},
	}
}

func (c *cli) ordersCmd() *cobra.Command {
	var student string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List order status per book, or one student's orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if student == "" {
				orders, err := c.app.repo.ListOrders(ctx)
				if err != nil {
					return err
				}
				printOrders(cmd.OutOrStdout(), orders)
				return nil
			}
			orders, err := c.app.repo.FindOrdersByStudent(ctx, strings.TrimSpace(student))
			if err != nil {
				return err
			}
			printStudentOrders(cmd.OutOrStdout(), strings.TrimSpace(student), orders)
			return nil
		},
	}
	cmd.Flags().StringVar(&student, "student", "", "only orders of this student number")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register STUDENT ISBN",
		Short: "Register a pre-order for a student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, err := c.app.repo.RegisterOrder(ctx, purchase.OrderInput{StudentNumber: args[0], BookISBN: args[1]})
			if err != nil {
				return err
			}
			c.audit(c.app.repo.LogRegistration(ctx, res, "", cliUserAgent))
			return report(cmd, res)
		},
	}
}

func (c *cli) unregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister STUDENT ISBN",
		Short: "Cancel a pre-order that is neither paid nor delivered",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, err := c.app.repo.UnregisterOrder(ctx, purchase.OrderInput{StudentNumber: args[0], BookISBN: args[1]})
			if err != nil {
				return err
			}
			c.audit(c.app.repo.LogRegistration(ctx, res, "", cliUserAgent))
			return report(cmd, res)
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	var admin string
	cmd := &cobra.Command{
		Use:   "status STUDENT ISBN ordered|paid|delivered true|false",
		Short: "Set or clear one status flag",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := purchase.ParseField(args[2])
			if err != nil {
				return err
			}
			checked, err := strconv.ParseBool(args[3])
			if err != nil {
				return fmt.Errorf("status value %q: %w", args[3], err)
			}
			in := purchase.StatusFieldInput{StudentNumber: args[0], BookISBN: args[1], Field: field, Checked: checked}

			ctx := cmd.Context()
			res, err := c.app.repo.UpdateOrderStatusField(ctx, in)
			if err != nil {
				return err
			}
			c.audit(c.app.repo.LogAdminAudit(ctx, purchase.AdminAudit{
				AdminEmail: admin,
				Input:      in,
				Success:    res.Success,
				UserAgent:  cliUserAgent,
				Message:    res.Message,
			}))
			return report(cmd, res)
		},
	}
	cmd.Flags().StringVar(&admin, "admin", "cli", "administrator recorded in the audit log")
	return cmd
}

func (c *cli) invalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate [books|students|orders|all]...",
		Short: "Drop cached views after the sheets were edited by hand",
		Long: "Bumps the watch keys of the given sheets. With the redis gen store\n" +
			"every running instance sharing it refetches on its next read.",
		ValidArgs: []string{"books", "students", "orders", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := make([]purchase.EditTarget, 0, len(args))
			for _, a := range args {
				t, err := purchase.ParseEditTarget(a)
				if err != nil {
					return err
				}
				targets = append(targets, t)
			}
			if err := c.app.repo.NotifyEdited(cmd.Context(), targets...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "invalidated")
			return nil
		},
	}
}

// audit logs a failed audit append; the mutation itself already happened.
func (c *cli) audit(err error) {
	if err != nil {
		c.app.zl.Warn("audit log append failed", zap.Error(err))
	}
}

// report prints the outcome; a refused mutation becomes the command error.
func report(cmd *cobra.Command, res purchase.Result) error {
	if !res.Success {
		return fmt.Errorf("%s (%w)", res.Message, res.Err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}
