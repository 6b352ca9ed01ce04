package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/utafrali/productreview/internal/app"
)

func newReviewsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Write reviews",
	}
	cmd.AddCommand(newReviewsSubmitCmd(c))
	return cmd
}

func newReviewsSubmitCmd(c *cli) *cobra.Command {
	var (
		name    string
		rating  int
		comment string
	)

	cmd := &cobra.Command{
		Use:   "submit ID",
		Short: "Submit a review for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return c.run(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
				detail := a.ProductDetail()
				if err := detail.LoadProduct(ctx, id); err != nil {
					return err
				}
				if err := detail.SubmitReview(ctx, name, rating, comment); err != nil {
					return err
				}

				st := detail.State()
				_, err := fmt.Fprintf(out, "Review submitted for %s. Rating is now %.1f/5 from %d reviews.\n",
					st.Product.Name, st.Product.AverageRating, st.Product.ReviewCount)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "your name")
	cmd.Flags().IntVar(&rating, "rating", 0, "star rating (1-5)")
	cmd.Flags().StringVar(&comment, "comment", "", "review text")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}
