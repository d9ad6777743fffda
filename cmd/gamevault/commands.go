package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/gamevault/internal/collection"
	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/notice"
)

// newFlagSet returns a flag set that reports errors instead of exiting.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// visited returns the names of flags set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// ---- auth ----

func (a *app) credentials(fs *flag.FlagSet, args []string) (string, string, error) {
	email := fs.String("email", "", "email address")
	pw := fs.String("p", "", "password (prompted when empty)")
	if err := parse(fs, args); err != nil {
		return "", "", err
	}
	if *email == "" && fs.NArg() > 0 {
		*email = fs.Arg(0)
	}
	if *email == "" {
		fmt.Fprintln(a.out, "need -email")
		return "", "", errUsage
	}
	if *pw == "" {
		p, err := a.password("Password: ")
		if err != nil {
			return "", "", err
		}
		*pw = p
	}
	return *email, *pw, nil
}

func (a *app) cmdSignUp(ctx context.Context, args []string) error {
	fs := a.newFlagSet("signup")
	name := fs.String("name", "", "display name")
	email, pw, err := a.credentials(fs, args)
	if err != nil {
		return err
	}
	if _, err := a.sessions.SignUp(ctx, email, pw, *name); err != nil {
		return err
	}
	printNotice(a.out, notice.SignedUp())
	return nil
}

func (a *app) cmdSignIn(ctx context.Context, args []string) error {
	email, pw, err := a.credentials(a.newFlagSet("signin"), args)
	if err != nil {
		return err
	}
	if err := a.sessions.SignIn(ctx, email, pw); err != nil {
		return err
	}
	printNotice(a.out, notice.SignedIn())
	if u := a.sessions.Current(); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", u.DisplayName, u.Email)
	}
	return nil
}

func (a *app) cmdSignOut(ctx context.Context, _ []string) error {
	if err := a.sessions.SignOut(ctx); err != nil {
		return err
	}
	printNotice(a.out, notice.SignedOut())
	return nil
}

func (a *app) cmdWhoAmI(ctx context.Context, _ []string) error {
	if !a.sessions.Ready() {
		a.sessions.Initialize(ctx)
	}
	u := a.sessions.Current()
	if u == nil {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\nid: %s\n", u.DisplayName, u.Email, u.ID)
	return nil
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	fs := a.newFlagSet("profile")
	name := fs.String("name", "", "display name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !visited(fs)["name"] {
		fmt.Fprintln(a.out, "need -name")
		return errUsage
	}
	u, err := a.sessions.UpdateProfile(ctx, *name)
	if err != nil {
		return err
	}
	printNotice(a.out, notice.ProfileUpdated())
	fmt.Fprintf(a.out, "display name: %s\n", u.DisplayName)
	return nil
}

// ---- collection ----

func (a *app) cmdList(_ context.Context, args []string) error {
	fs := a.newFlagSet("list")
	tab := fs.String("tab", "collection", "collection, favorites or wishlist")
	q := fs.String("q", "", "title contains")
	platform := fs.String("platform", model.PlatformAll, "platform filter")
	sortKey := fs.String("sort", string(collection.SortAlphabetical), "alphabetical, platform, price-high, price-low, newest, oldest")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}

	f, err := buildFilter(*tab, *q, *platform, *sortKey)
	if err != nil {
		return err
	}
	games := a.games.View(f)
	if *asJSON {
		printJSON(a.out, games)
		return nil
	}
	printGames(a.out, games)
	return nil
}

func buildFilter(tab, q, platform, sortKey string) (collection.Filter, error) {
	p, ok := collection.ParsePartition(tab)
	if !ok {
		return collection.Filter{}, errs.Validation("tab", fmt.Sprintf("unknown tab %q", tab))
	}
	k, ok := collection.ParseSortKey(sortKey)
	if !ok {
		return collection.Filter{}, errs.Validation("sort", fmt.Sprintf("unknown sort %q", sortKey))
	}
	if !model.IsAllPlatforms(platform) {
		canon, ok := model.LookupPlatform(platform)
		if !ok {
			return collection.Filter{}, errs.Validation("platform", fmt.Sprintf("unknown platform %q", platform))
		}
		platform = canon
	}
	return collection.Filter{Partition: p, Search: q, Platform: platform, Sort: k}, nil
}

func (a *app) cmdSummary(_ context.Context, _ []string) error {
	printSummary(a.out, a.games.Summary())
	return nil
}

// gameFlags binds the editable game fields.
type gameFlags struct {
	title, platform, cover, date, publisher, notes, condition, paid, value *string
	year                                                                   *int
	fav                                                                    *bool
}

func bindGameFlags(fs *flag.FlagSet) *gameFlags {
	return &gameFlags{
		title:     fs.String("title", "", "title"),
		platform:  fs.String("platform", "", "platform, see 'platforms'"),
		cover:     fs.String("cover", "", "cover image URL"),
		year:      fs.Int("year", 0, "release year"),
		date:      fs.String("date", "", "release date YYYY-MM-DD (empty clears on edit)"),
		publisher: fs.String("publisher", "", "publisher"),
		notes:     fs.String("notes", "", "notes"),
		condition: fs.String("condition", "", "Sealed, CIB, Disc Only, Digital or Opened"),
		paid:      fs.String("paid", "", "purchase price, e.g. 59.99"),
		value:     fs.String("value", "", "current value, e.g. 40"),
		fav:       fs.Bool("fav", false, "favorite"),
	}
}

// apply copies the flags that were set onto d.
func (g *gameFlags) apply(set map[string]bool, d *model.GameDraft) error {
	p, err := g.patch(set)
	if err != nil {
		return err
	}
	cur := model.Game{
		Title: d.Title, Platform: d.Platform, CoverURL: d.CoverURL, ReleaseYear: d.ReleaseYear,
		ReleaseDate: d.ReleaseDate, Publisher: d.Publisher, Notes: d.Notes, Condition: d.Condition,
		PurchasePrice: d.PurchasePrice, CurrentValue: d.CurrentValue, IsFavorite: d.IsFavorite,
	}
	next := p.Apply(cur)
	*d = model.GameDraft{
		Title: next.Title, Platform: next.Platform, CoverURL: next.CoverURL, ReleaseYear: next.ReleaseYear,
		ReleaseDate: next.ReleaseDate, Publisher: next.Publisher, Notes: next.Notes, Condition: next.Condition,
		PurchasePrice: next.PurchasePrice, CurrentValue: next.CurrentValue, IsFavorite: next.IsFavorite,
	}
	return nil
}

// patch builds a partial update from the flags that were set.
func (g *gameFlags) patch(set map[string]bool) (model.GamePatch, error) {
	var p model.GamePatch
	if set["title"] {
		p.Title = g.title
	}
	if set["platform"] {
		name := *g.platform
		if canon, ok := model.LookupPlatform(name); ok {
			name = canon
		}
		p.Platform = &name
	}
	if set["cover"] {
		p.CoverURL = g.cover
	}
	if set["publisher"] {
		p.Publisher = g.publisher
	}
	if set["notes"] {
		p.Notes = g.notes
	}
	if set["year"] {
		p.ReleaseYear = g.year
	}
	if set["date"] {
		var date *time.Time
		if s := strings.TrimSpace(*g.date); s != "" {
			t, err := time.Parse(time.DateOnly, s)
			if err != nil {
				return p, errs.Validation("release_date", "release date must look like 2017-03-03")
			}
			date = &t
			if !set["year"] {
				y := t.Year()
				p.ReleaseYear = &y
			}
		}
		p.ReleaseDate = &date
	}
	if set["condition"] {
		c, ok := model.ParseCondition(*g.condition)
		if !ok {
			return p, errs.Validation("condition", fmt.Sprintf("unknown condition %q", *g.condition))
		}
		p.Condition = &c
	}
	if set["paid"] {
		m, err := model.ParseMoney(*g.paid)
		if err != nil {
			return p, errs.Validation("purchase_price", err.Error())
		}
		p.PurchasePrice = &m
	}
	if set["value"] {
		m, err := model.ParseMoney(*g.value)
		if err != nil {
			return p, errs.Validation("current_value", err.Error())
		}
		p.CurrentValue = &m
	}
	if set["fav"] {
		p.IsFavorite = g.fav
	}
	return p, nil
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	gf := bindGameFlags(fs)
	wishlist := fs.Bool("wishlist", false, "add to the wishlist")
	from := fs.Int("from", 0, "prefill from a catalogue id (see 'search')")
	if err := parse(fs, args); err != nil {
		return err
	}

	var d model.GameDraft
	if *from > 0 {
		det := a.lookup.GetDetails(ctx, *from)
		if det == nil {
			fmt.Fprintln(a.out, "catalogue lookup failed, using the given fields only")
		} else {
			d = det.Draft
			if len(det.AvailablePlatforms) > 1 && !visited(fs)["platform"] {
				fmt.Fprintf(a.out, "available platforms: %s (using %s)\n",
					strings.Join(det.AvailablePlatforms, ", "), d.Platform)
			}
		}
	}
	if err := gf.apply(visited(fs), &d); err != nil {
		return err
	}

	g, err := a.games.Add(ctx, d, *wishlist)
	if err != nil {
		return err
	}
	printNotice(a.out, notice.Added(*g))
	fmt.Fprintf(a.out, "id: %s\n", g.ID)
	return nil
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("edit")
	id := fs.String("id", "", "game id or unique prefix")
	gf := bindGameFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	gid, err := a.resolveID(*id)
	if err != nil {
		return err
	}
	set := visited(fs)
	delete(set, "id")
	if len(set) == 0 {
		fmt.Fprintln(a.out, "nothing to change")
		return errUsage
	}
	p, err := gf.patch(set)
	if err != nil {
		return err
	}
	g, err := a.games.Update(ctx, gid, p)
	if err != nil {
		return err
	}
	printNotice(a.out, notice.Updated(*g))
	return nil
}

func (a *app) idFlag(name string, args []string) (uuid.UUID, error) {
	fs := a.newFlagSet(name)
	id := fs.String("id", "", "game id or unique prefix")
	if err := parse(fs, args); err != nil {
		return uuid.Nil, err
	}
	if *id == "" && fs.NArg() > 0 {
		*id = fs.Arg(0)
	}
	return a.resolveID(*id)
}

func (a *app) cmdFav(ctx context.Context, args []string) error {
	id, err := a.idFlag("fav", args)
	if err != nil {
		return err
	}
	g, err := a.games.ToggleFavorite(ctx, id)
	if err != nil {
		return err
	}
	printNotice(a.out, notice.Favorite(*g))
	return nil
}

func (a *app) cmdMove(ctx context.Context, args []string) error {
	id, err := a.idFlag("move", args)
	if err != nil {
		return err
	}
	g, err := a.games.MoveToCollection(ctx, id)
	if err != nil {
		return err
	}
	printNotice(a.out, notice.Moved(*g))
	return nil
}

func (a *app) cmdRemove(ctx context.Context, args []string) error {
	id, err := a.idFlag("rm", args)
	if err != nil {
		return err
	}
	title := id.String()
	if g, ok := a.games.Get(id); ok {
		title = g.Title
	}
	if err := a.games.Remove(ctx, id); err != nil {
		return err
	}
	printNotice(a.out, notice.Deleted(title))
	return nil
}

// resolveID accepts a full id or a unique prefix of a loaded game's id.
func (a *app) resolveID(s string) (uuid.UUID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return uuid.Nil, errs.Validation("id", "id is required")
	}
	if id, err := uuid.FromString(s); err == nil {
		return id, nil
	}
	var match uuid.UUID
	n := 0
	for _, g := range a.games.Games() {
		if strings.HasPrefix(g.ID.String(), s) {
			match = g.ID
			n++
		}
	}
	switch n {
	case 0:
		return uuid.Nil, errs.ErrNotFound
	case 1:
		return match, nil
	default:
		return uuid.Nil, errs.Validation("id", fmt.Sprintf("id prefix %q matches %d games", s, n))
	}
}

// ---- catalogue ----

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	fs := a.newFlagSet("search")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	q := strings.Join(fs.Args(), " ")
	res := a.lookup.Search(ctx, q)
	if *asJSON {
		printJSON(a.out, res)
		return nil
	}
	printResults(a.out, res)
	return nil
}

func (a *app) cmdDetails(ctx context.Context, args []string) error {
	fs := a.newFlagSet("details")
	id := fs.Int("id", 0, "catalogue id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == 0 && fs.NArg() > 0 {
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return errUsage
		}
		*id = n
	}
	det := a.lookup.GetDetails(ctx, *id)
	if det == nil {
		fmt.Fprintln(a.out, "no details available")
		return nil
	}
	printDetails(a.out, det)
	return nil
}
