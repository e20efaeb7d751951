package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
)

func (c *cli) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register NAME",
		Short: "Register a reviewer name for this client",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			u, err := c.users.Register(ctx, c.clientID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return c.print(cmd, u, func(w io.Writer) {
				fmt.Fprintf(w, "registered %s (%s)\n", u.Name, u.ID)
			})
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active user of this client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			u, err := c.users.Current(ctx, c.clientID)
			if err != nil {
				return err
			}
			return c.print(cmd, u, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s)\n", u.Name, u.ID)
			})
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the active user of this client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			if err := c.users.Logout(ctx, c.clientID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (c *cli) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products := c.catalog.List(cmd.Context())
			return c.print(cmd, products, func(w io.Writer) { printProducts(w, products) })
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var in service.AddReviewInput
	cmd := &cobra.Command{
		Use:   "add PRODUCT",
		Short: "Add a review to a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			rv, err := c.reviews.Add(ctx, c.clientID, args[0], in)
			if err != nil {
				return err
			}
			return c.print(cmd, rv, func(w io.Writer) {
				printReview(w, *rv)
				if s, err := c.sessions.Get(ctx, c.clientID, args[0]); err == nil && s.Notice != "" {
					fmt.Fprintln(w, s.Notice)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&in.Rating, "rating", "r", 0, "rating from 1 to 5")
	cmd.Flags().StringVarP(&in.Comment, "comment", "m", "", "review text")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var (
		stars int
		order string
	)
	cmd := &cobra.Command{
		Use:   "list PRODUCT",
		Short: "List the reviews of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := domain.ParseOrder(order)
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()

			page, err := c.reviews.List(ctx, c.clientID, args[0], domain.View{Stars: stars, Order: o})
			if err != nil {
				return err
			}
			return c.print(cmd, page, func(w io.Writer) { printPage(w, page) })
		},
	}
	cmd.Flags().IntVar(&stars, "stars", 0, "show only reviews with this many stars (0 for all)")
	cmd.Flags().StringVar(&order, "order", string(domain.OrderNewest), "sort order: newest, oldest or best")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary PRODUCT",
		Short: "Show the rating summary of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			sum, err := c.reviews.Summary(ctx, args[0])
			if err != nil {
				return err
			}
			return c.print(cmd, sum, func(w io.Writer) { printSummary(w, *sum) })
		},
	}
}

type reviewAction func(ctx context.Context, productID, reviewID string) (*service.ReviewView, error)

func (c *cli) toggleLike(ctx context.Context, productID, reviewID string) (*service.ReviewView, error) {
	return c.reviews.ToggleLike(ctx, c.clientID, productID, reviewID)
}

func (c *cli) toggleDislike(ctx context.Context, productID, reviewID string) (*service.ReviewView, error) {
	return c.reviews.ToggleDislike(ctx, c.clientID, productID, reviewID)
}

func (c *cli) reactCmd(use, short string, action reviewAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " PRODUCT REVIEW",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			rv, err := action(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return c.print(cmd, rv, func(w io.Writer) { printReview(w, *rv) })
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	return c.reactCmd("report", "Report a review as inappropriate",
		func(ctx context.Context, productID, reviewID string) (*service.ReviewView, error) {
			return c.reviews.Report(ctx, c.clientID, productID, reviewID)
		})
}

func (c *cli) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit PRODUCT REVIEW TEXT",
		Short: "Replace the text of one of your reviews",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			productID, reviewID := args[0], args[1]
			if _, err := c.sessions.BeginEdit(ctx, c.clientID, productID, reviewID); err != nil {
				return err
			}
			rv, err := c.saveDraft(ctx, productID, strings.Join(args[2:], " "))
			if err != nil {
				// Leave no half-finished edit behind for the next command.
				_, _ = c.sessions.CancelEdit(ctx, c.clientID, productID)
				return err
			}
			return c.print(cmd, rv, func(w io.Writer) { printReview(w, *rv) })
		},
	}
}

func (c *cli) saveDraft(ctx context.Context, productID, text string) (*service.ReviewView, error) {
	if _, err := c.sessions.UpdateDraft(ctx, c.clientID, productID, text); err != nil {
		return nil, err
	}
	return c.sessions.SaveEdit(ctx, c.clientID, productID)
}

func (c *cli) deleteCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "delete PRODUCT REVIEW",
		Short: "Delete one of your reviews",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()

			productID, reviewID := args[0], args[1]
			if _, err := c.sessions.RequestDelete(ctx, c.clientID, productID, reviewID); err != nil {
				return err
			}

			if dryRun {
				if _, err := c.sessions.CancelDelete(ctx, c.clientID, productID); err != nil {
					return err
				}
				res := &service.DeleteResult{ReviewID: reviewID}
				return c.print(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "would delete review %s\n", reviewID)
				})
			}

			res, err := c.sessions.ConfirmDelete(ctx, c.clientID, productID)
			if err != nil {
				return err
			}
			return c.print(cmd, res, func(w io.Writer) {
				if res.Deleted {
					fmt.Fprintf(w, "deleted review %s\n", res.ReviewID)
				} else {
					fmt.Fprintf(w, "review %s was already gone\n", reviewID)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check that the review can be deleted without deleting it")
	return cmd
}
