package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/productreview/internal/app"
	"github.com/utafrali/productreview/internal/domain"
	"github.com/utafrali/productreview/internal/productlist"
	apperrors "github.com/utafrali/productreview/pkg/errors"
)

func newProductsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List and inspect catalog products",
	}
	cmd.AddCommand(newProductsListCmd(c), newProductsShowCmd(c))
	return cmd
}

func newProductsListCmd(c *cli) *cobra.Command {
	var (
		category string
		sortBy   string
		search   string
		pages    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products page by page",
		Long: `List products from the catalog, optionally filtered by category and sorted.

--search narrows the fetched products locally; it never widens the catalog
query, so raise --pages to search deeper.

Categories: ` + strings.Join(domain.Categories(), ", ") + `
Sort options: ` + sortValues(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pages < 1 {
				return apperrors.InvalidInput("--pages must be at least 1")
			}
			opts := []productlist.Option{}
			if category != "" {
				cat, ok := domain.ParseCategory(category)
				if !ok {
					return apperrors.InvalidInput("unknown category: " + category)
				}
				opts = append(opts, productlist.WithCategory(cat))
			}
			if sortBy != "" {
				s, ok := domain.ParseSortOption(sortBy)
				if !ok {
					return apperrors.InvalidInput("unknown sort option: " + sortBy)
				}
				opts = append(opts, productlist.WithSort(s))
			}

			return c.run(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
				list := a.ProductList(opts...)
				if err := list.Load(ctx, true); err != nil {
					return err
				}
				for i := 1; i < pages && list.State().HasMore; i++ {
					if err := list.LoadNextPage(ctx); err != nil {
						return err
					}
				}
				list.SetSearchQuery(search)

				st := list.State()
				if err := printProducts(out, st.Products); err != nil {
					return err
				}
				more := ""
				if st.HasMore {
					more = ", more available"
				}
				_, err := fmt.Fprintf(out, "\n%d shown of %d fetched (page %d/%d%s) · %s · %s\n",
					len(st.Products), len(list.Accumulated()), st.CurrentPage+1, max(st.TotalPages, 1),
					more, st.Category, st.Sort.Label)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category filter")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort option value or label (default name,asc)")
	cmd.Flags().StringVar(&search, "search", "", "local text search over fetched products")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	return cmd
}

func newProductsShowCmd(c *cli) *cobra.Command {
	var (
		rating      int
		reviewPages int
	)

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a product with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if rating != 0 && !domain.ValidRating(rating) {
				return apperrors.InvalidInput("--rating must be between 1 and 5")
			}

			return c.run(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
				detail := a.ProductDetail()
				var inWishlist bool

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					if err := detail.LoadProduct(gctx, id); err != nil {
						return err
					}
					if rating != 0 {
						if err := detail.FilterByRating(gctx, &rating); err != nil {
							return err
						}
					}
					for i := 1; i < reviewPages && detail.State().HasMoreReviews; i++ {
						if err := detail.LoadNextReviews(gctx); err != nil {
							return err
						}
					}
					return nil
				})
				g.Go(func() error {
					var err error
					inWishlist, err = a.Wishlist().Contains(gctx, id)
					return err
				})
				if err := g.Wait(); err != nil {
					return err
				}

				st := detail.State()
				printProduct(out, *st.Product, inWishlist)

				header := "Reviews"
				if st.SelectedRating != nil {
					header = fmt.Sprintf("Reviews (%d★ only)", *st.SelectedRating)
				}
				fmt.Fprintf(out, "\n%s · page %d/%d\n", header, st.CurrentReviewPage+1, max(st.TotalReviewPages, 1))
				printReviews(out, st.Reviews, time.Now())
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "only show reviews with this star rating (1-5)")
	cmd.Flags().IntVar(&reviewPages, "review-pages", 1, "number of review pages to fetch")
	return cmd
}

func sortValues() string {
	opts := domain.SortOptions()
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return strings.Join(values, ", ")
}
