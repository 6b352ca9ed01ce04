package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/utafrali/productreview/internal/app"
	"github.com/utafrali/productreview/internal/domain"
)

func newWishlistCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the local wishlist",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
				items, err := a.Wishlist().List(ctx)
				if err != nil {
					return err
				}
				return printWishlist(out, items)
			})
		},
	}

	add := &cobra.Command{
		Use:   "add ID",
		Short: "Save a product to the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.run(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
				p, err := fetchProduct(ctx, a, id)
				if err != nil {
					return err
				}
				if err := a.Wishlist().Toggle(ctx, p, false); err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "Added %s to your wishlist.\n", p.Name)
				return err
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a product from the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.run(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
				if err := a.Wishlist().Remove(ctx, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(out, "Removed product %d from your wishlist.\n", id)
				return err
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle ID",
		Short: "Add the product if absent, remove it if present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.run(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
				in, err := a.Wishlist().Contains(ctx, id)
				if err != nil {
					return err
				}

				// Removal needs no catalog round trip.
				p := domain.Product{ID: id}
				if !in {
					if p, err = fetchProduct(ctx, a, id); err != nil {
						return err
					}
				}
				if err := a.Wishlist().Toggle(ctx, p, in); err != nil {
					return err
				}

				if in {
					_, err = fmt.Fprintf(out, "Removed product %d from your wishlist.\n", id)
				} else {
					_, err = fmt.Fprintf(out, "Added %s to your wishlist.\n", p.Name)
				}
				return err
			})
		},
	}

	cmd.AddCommand(list, add, remove, toggle)
	return cmd
}

func fetchProduct(ctx context.Context, a *app.App, id int64) (domain.Product, error) {
	dto, err := a.Catalog().GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return dto.ToDomain(), nil
}
