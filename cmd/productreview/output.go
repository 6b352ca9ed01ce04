package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/utafrali/productreview/internal/domain"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func printProducts(out io.Writer, products []domain.Product) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tREVIEWS")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\t%d\n",
			p.ID, p.Name, p.Category, p.FormattedPrice(), p.AverageRating, p.ReviewCount)
	}
	return tw.Flush()
}

func printProduct(out io.Writer, p domain.Product, inWishlist bool) {
	fmt.Fprintf(out, "%s  (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(out, "%s · %s\n", p.Category, p.FormattedPrice())
	if p.HasReviews() {
		fmt.Fprintf(out, "Rating: %.1f/5 from %d reviews\n", p.AverageRating, p.ReviewCount)
		for stars := domain.MaxRating; stars >= domain.MinRating; stars-- {
			share := p.RatingShare(stars)
			fmt.Fprintf(out, "  %d★ %-20s %d\n", stars, strings.Repeat("█", int(share*20+0.5)), p.RatingBreakdown[stars])
		}
	} else {
		fmt.Fprintln(out, "No reviews yet")
	}
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
	if p.AISummary != nil {
		fmt.Fprintf(out, "\nSummary: %s\n", *p.AISummary)
	}
	fmt.Fprintf(out, "\nIn wishlist: %s\n", yesNo(inWishlist))
}

func printReviews(out io.Writer, reviews []domain.Review, now time.Time) {
	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews match.")
		return
	}
	for _, r := range reviews {
		fmt.Fprintf(out, "\n#%d %s %s  %s (%s)\n",
			r.ID, strings.Repeat("★", r.Rating), r.ReviewerName, r.FormattedDate(), r.RelativeTime(now))
		fmt.Fprintf(out, "  %s\n", r.Comment)
		fmt.Fprintf(out, "  %d found this helpful\n", r.HelpfulCount)
	}
}

func printWishlist(out io.Writer, items []domain.WishlistItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "Your wishlist is empty.")
		return err
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tADDED")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\t%s\n",
			item.ProductID, item.Name, item.Category, item.FormattedPrice(), item.AverageRating,
			item.AddedAt.Local().Format("Jan 02, 2006 15:04"))
	}
	return tw.Flush()
}

func printNotifications(out io.Writer, items []domain.Notification, unread int) error {
	fmt.Fprintf(out, "%d unread\n", unread)
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\t\tTYPE\tTITLE\tMESSAGE\tWHEN")
	for _, n := range items {
		marker := " "
		if !n.Read {
			marker = "•"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID, marker, n.Type, n.Title, n.Message, n.Timestamp.Local().Format("Jan 02 15:04"))
	}
	return tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
