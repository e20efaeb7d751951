package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
)

// print writes v as indented JSON with --json, otherwise through text.
func (c *cli) print(cmd *cobra.Command, v any, text func(io.Writer)) error {
	w := cmd.OutOrStdout()
	if c.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func starBar(stars int) string {
	if stars < 0 {
		stars = 0
	}
	if stars > domain.MaxRating {
		stars = domain.MaxRating
	}
	return strings.Repeat("★", stars) + strings.Repeat("☆", domain.MaxRating-stars)
}

func printReview(w io.Writer, rv service.ReviewView) {
	marker := ""
	switch {
	case rv.IsAuthor:
		marker = " (you)"
	case rv.ViewerReaction != domain.ReactionNone.String():
		marker = " (" + rv.ViewerReaction + ")"
	}
	fmt.Fprintf(w, "%s  %s  %s%s  %s\n", rv.ID, starBar(rv.Stars), rv.AuthorName, marker, rv.Date)
	fmt.Fprintf(w, "    %s\n", rv.Comment)
	fmt.Fprintf(w, "    likes %d  dislikes %d  reports %d\n", rv.Likes, rv.Dislikes, rv.Reports)
}

func printSummary(w io.Writer, s service.SummaryView) {
	fmt.Fprintf(w, "%s out of 5 (%d reviews)\n", s.AverageLabel, s.Total)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, b := range s.Histogram {
		fmt.Fprintf(tw, "%d stars\t%s\t%d\n", b.Stars, b.PercentLabel, b.Count)
	}
	_ = tw.Flush()
}

func printPage(w io.Writer, page *service.ReviewPage) {
	printSummary(w, page.Summary)
	fmt.Fprintln(w)
	if len(page.Reviews) == 0 {
		fmt.Fprintln(w, "no reviews")
		return
	}
	for _, rv := range page.Reviews {
		printReview(w, rv)
	}
}

func printProducts(w io.Writer, products []domain.Product) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.PriceLabel())
	}
	_ = tw.Flush()
}
