package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/and161185/gamevault/internal/collection"
	"github.com/and161185/gamevault/internal/metadata"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/notice"
)

const shortID = 8

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printNotice(w io.Writer, n notice.Notice) {
	mark := "*"
	if n.Level == notice.LevelError {
		mark = "!"
	}
	fmt.Fprintf(w, "%s %s\n", mark, n)
}

func printGames(w io.Writer, games []model.Game) {
	if len(games) == 0 {
		fmt.Fprintln(w, "no games")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPLATFORM\tYEAR\tCONDITION\tPAID\tVALUE\t")
	for _, g := range games {
		title := g.Title
		if g.IsFavorite && !g.IsWishlist {
			title += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			g.ID.String()[:shortID], title, g.Platform, year(g.ReleaseYear),
			g.Condition, g.PurchasePrice, g.CurrentValue)
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s collection.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "collection\t%d\n", s.Collection)
	fmt.Fprintf(tw, "favorites\t%d\n", s.Favorites)
	fmt.Fprintf(tw, "wishlist\t%d\n", s.Wishlist)
	fmt.Fprintf(tw, "paid\t%s\n", s.PurchaseTotal)
	fmt.Fprintf(tw, "value\t%s\n", s.ValueTotal)
	_ = tw.Flush()
}

func printResults(w io.Writer, res []metadata.Result) {
	if len(res) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tPLATFORMS\t")
	for _, r := range res {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", r.ID, r.Title, year(r.ReleaseYear), strings.Join(r.Platforms, ", "))
	}
	_ = tw.Flush()
}

func printDetails(w io.Writer, d *metadata.Details) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", d.ID)
	fmt.Fprintf(tw, "title\t%s\n", d.Draft.Title)
	fmt.Fprintf(tw, "platforms\t%s\n", strings.Join(d.AvailablePlatforms, ", "))
	fmt.Fprintf(tw, "year\t%s\n", year(d.Draft.ReleaseYear))
	if d.Draft.ReleaseDate != nil {
		fmt.Fprintf(tw, "released\t%s\n", d.Draft.ReleaseDate.Format("2006-01-02"))
	}
	if d.Draft.Publisher != "" {
		fmt.Fprintf(tw, "publisher\t%s\n", d.Draft.Publisher)
	}
	fmt.Fprintf(tw, "cover\t%s\n", d.Draft.CoverURL)
	_ = tw.Flush()
	if d.Draft.Notes != "" {
		fmt.Fprintf(w, "\n%s\n", d.Draft.Notes)
	}
}

func year(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}
