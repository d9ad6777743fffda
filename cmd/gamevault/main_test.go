package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/gamevault/internal/collection"
	"github.com/and161185/gamevault/internal/config"
	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/session"
	"github.com/and161185/gamevault/internal/store"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	log := zaptest.NewLogger(t)
	prov := newFakeProvider()
	profiles := store.NewProfiles(&fakeProfileRepo{rows: map[uuid.UUID]model.Profile{}})
	games := collection.New(store.New(prov, &fakeGameRepo{}, log), log)

	var out bytes.Buffer
	a := wire(&config.Config{SearchDebounce: time.Millisecond}, log, &out, session.New(prov, profiles, log), games, fakeLookup{})
	a.password = func(string) (string, error) { return "secret1", nil }
	t.Cleanup(a.Close)
	return a, &out
}

// run dispatches one command and returns what it printed.
func run1(t *testing.T, a *app, out *bytes.Buffer, line string) (string, error) {
	t.Helper()
	fields, err := splitArgs(line)
	if err != nil {
		t.Fatalf("splitArgs(%q): %v", line, err)
	}
	out.Reset()
	err = a.dispatch(context.Background(), fields[0], fields[1:])
	return out.String(), err
}

var summaryRe = regexp.MustCompile(`(?s)favorites\s+1\n.*paid\s+19\.99\n`)

func gameByTitle(t *testing.T, a *app, title string, wishlist bool) model.Game {
	t.Helper()
	for _, g := range a.games.Games() {
		if g.Title == title && g.IsWishlist == wishlist {
			return g
		}
	}
	t.Fatalf("game %q (wishlist=%v) not loaded", title, wishlist)
	return model.Game{}
}

func Test_dispatch_RequiresSignIn(t *testing.T) {
	t.Parallel()
	a, out := newTestApp(t)

	got, err := run1(t, a, out, "list")
	if !errors.Is(err, errReported) || !strings.Contains(got, "Authentication Error") {
		t.Fatalf("list without session: %q %v", got, err)
	}
	if got, _ := run1(t, a, out, "whoami"); !strings.Contains(got, "not signed in") {
		t.Fatalf("whoami=%q", got)
	}
	if _, err := run1(t, a, out, "nope"); !errors.Is(err, errUsage) {
		t.Fatalf("unknown command: %v", err)
	}
}

func Test_dispatch_CollectionFlow(t *testing.T) {
	t.Parallel()
	a, out := newTestApp(t)

	got, err := run1(t, a, out, "signin -email ann@example.com")
	if err != nil || !strings.Contains(got, "Welcome back!") || !strings.Contains(got, "Signed in as ann") {
		t.Fatalf("signin: %q %v", got, err)
	}
	if !a.games.Loaded() {
		t.Fatalf("sign-in event must load the collection")
	}

	if got, err = run1(t, a, out, `add -title "Halo" -platform xbox -paid 19.99 -condition cib`); err != nil || !strings.Contains(got, "Game Added:") {
		t.Fatalf("add: %q %v", got, err)
	}
	halo := gameByTitle(t, a, "Halo", false)
	if halo.Platform != "Xbox" || halo.PurchasePrice != 1999 || halo.Condition != model.ConditionCIB {
		t.Fatalf("stored=%+v", halo)
	}

	got, err = run1(t, a, out, "add -title halo -platform Xbox")
	if !errors.Is(err, errReported) || !strings.Contains(got, "halo for Xbox already exists in your collection") {
		t.Fatalf("duplicate: %q %v", got, err)
	}

	if got, _ = run1(t, a, out, "add -title Halo -platform Xbox -wishlist"); !strings.Contains(got, "Game Added to Wishlist") {
		t.Fatalf("wishlist add: %q", got)
	}
	wish := gameByTitle(t, a, "Halo", true)

	got, _ = run1(t, a, out, "list -tab wishlist -json")
	var listed []model.Game
	if err := json.Unmarshal([]byte(got), &listed); err != nil || len(listed) != 1 || listed[0].ID != wish.ID {
		t.Fatalf("list json: %q %v", got, err)
	}

	if got, _ = run1(t, a, out, "fav "+halo.ID.String()[:8]); !strings.Contains(got, "Added to Favorites") {
		t.Fatalf("fav: %q", got)
	}
	if got, _ = run1(t, a, out, "move -id "+wish.ID.String()); !strings.Contains(got, "Game Already in Collection") {
		t.Fatalf("move collision: %q", got)
	}

	if got, _ = run1(t, a, out, "summary"); !summaryRe.MatchString(got) {
		t.Fatalf("summary: %q", got)
	}

	if got, _ = run1(t, a, out, "rm -id "+halo.ID.String()); !strings.Contains(got, "Game Deleted: Halo has been removed.") {
		t.Fatalf("rm: %q", got)
	}
	if got, _ = run1(t, a, out, "move -id "+wish.ID.String()); !strings.Contains(got, "Moved to Collection") {
		t.Fatalf("move: %q", got)
	}

	if got, _ = run1(t, a, out, "signout"); !strings.Contains(got, "Signed Out") {
		t.Fatalf("signout: %q", got)
	}
	if len(a.games.Games()) != 0 || a.games.Loaded() {
		t.Fatalf("sign-out must reset the collection")
	}
}

func Test_dispatch_AddFromCatalogue(t *testing.T) {
	t.Parallel()
	a, out := newTestApp(t)
	if _, err := run1(t, a, out, "signin ann@example.com"); err != nil {
		t.Fatalf("signin: %v", err)
	}

	got, err := run1(t, a, out, `add -from 5 -platform "playstation 2" -wishlist`)
	if err != nil || !strings.Contains(got, "Game Added to Wishlist") {
		t.Fatalf("add -from: %q %v", got, err)
	}
	g := gameByTitle(t, a, "Okami", true)
	if g.Platform != "PlayStation 2" || g.Publisher != "Capcom" || g.Condition != model.ConditionOpened || g.ReleaseYear != 2006 {
		t.Fatalf("prefill=%+v", g)
	}

	got, err = run1(t, a, out, "add -from 9 -title Doom -platform PC")
	if err != nil || !strings.Contains(got, "catalogue lookup failed") || !strings.Contains(got, "Game Added:") {
		t.Fatalf("failed lookup must not block manual entry: %q %v", got, err)
	}
}

func Test_dispatch_EditAndProfile(t *testing.T) {
	t.Parallel()
	a, out := newTestApp(t)
	_, _ = run1(t, a, out, "signin ann@example.com")
	_, _ = run1(t, a, out, "add -title Fable -platform Xbox")
	fable := gameByTitle(t, a, "Fable", false)

	got, err := run1(t, a, out, `edit -id `+fable.ID.String()+` -notes "boxed" -date 2004-09-14 -value 12`)
	if err != nil || !strings.Contains(got, "Game Updated") {
		t.Fatalf("edit: %q %v", got, err)
	}
	g := gameByTitle(t, a, "Fable", false)
	if g.Notes != "boxed" || g.ReleaseYear != 2004 || g.ReleaseDate == nil || g.CurrentValue != 1200 {
		t.Fatalf("edited=%+v", g)
	}

	if _, err := run1(t, a, out, "edit -id "+fable.ID.String()); !errors.Is(err, errUsage) {
		t.Fatalf("empty edit: %v", err)
	}
	if got, _ := run1(t, a, out, "edit -id "+fable.ID.String()+" -condition mint"); !strings.Contains(got, "unknown condition") {
		t.Fatalf("bad condition: %q", got)
	}

	if got, _ := run1(t, a, out, `profile -name "Ann B"`); !strings.Contains(got, "display name: Ann B") {
		t.Fatalf("profile: %q", got)
	}
	if got, _ := run1(t, a, out, "whoami"); !strings.Contains(got, "Ann B <ann@example.com>") {
		t.Fatalf("whoami: %q", got)
	}
}

func Test_dispatch_Search(t *testing.T) {
	t.Parallel()
	a, out := newTestApp(t)

	if got, _ := run1(t, a, out, "search oka mi"); !strings.Contains(got, "Okami") || !strings.Contains(got, "Wii, PlayStation 2") {
		t.Fatalf("search: %q", got)
	}
	if got, _ := run1(t, a, out, "search ab"); !strings.Contains(got, "no results") {
		t.Fatalf("short search: %q", got)
	}
	if got, _ := run1(t, a, out, "details 5"); !strings.Contains(got, "Capcom") {
		t.Fatalf("details: %q", got)
	}
	if got, _ := run1(t, a, out, "details -id 6"); !strings.Contains(got, "no details") {
		t.Fatalf("missing details: %q", got)
	}
}

func Test_splitArgs(t *testing.T) {
	t.Parallel()

	got, err := splitArgs(`add -title "The Last of Us"  -notes 'a "b"' -fav`)
	want := []string{"add", "-title", "The Last of Us", "-notes", `a "b"`, "-fav"}
	if err != nil || !slices.Equal(got, want) {
		t.Fatalf("splitArgs=%q %v", got, err)
	}
	if got, _ := splitArgs(`x ""`); !slices.Equal(got, []string{"x", ""}) {
		t.Fatalf("empty quoted arg: %q", got)
	}
	if _, err := splitArgs(`add "open`); err == nil {
		t.Fatalf("want unterminated quote error")
	}
}

func Test_buildFilter(t *testing.T) {
	t.Parallel()

	f, err := buildFilter("Favorites", "zel", "nintendo switch", "newest")
	if err != nil || f.Partition != collection.PartitionFavorites || f.Platform != "Nintendo Switch" || f.Sort != collection.SortNewest {
		t.Fatalf("filter=%+v %v", f, err)
	}
	for _, bad := range [][3]string{{"trash", "", ""}, {"", "Amiga", ""}, {"", "", "rating"}} {
		if _, err := buildFilter(bad[0], "", bad[1], bad[2]); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("%v: want validation error, got %v", bad, err)
		}
	}
}

func Test_gameFlags_patch(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	gf := bindGameFlags(fs)
	if err := fs.Parse([]string{"-date", "2017-03-03", "-paid", "$5", "-platform", "wii u"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, err := gf.patch(visited(fs))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if *p.ReleaseYear != 2017 || (*p.ReleaseDate).Day() != 3 || *p.PurchasePrice != 500 || *p.Platform != "Wii U" {
		t.Fatalf("patch=%+v", p)
	}
	if p.Title != nil || p.IsFavorite != nil {
		t.Fatalf("unset flags leaked into the patch")
	}

	fs = flag.NewFlagSet("t", flag.ContinueOnError)
	gf = bindGameFlags(fs)
	_ = fs.Parse([]string{"-date", ""})
	p, _ = gf.patch(visited(fs))
	if p.ReleaseDate == nil || *p.ReleaseDate != nil {
		t.Fatalf("empty -date must clear the date")
	}

	fs = flag.NewFlagSet("t", flag.ContinueOnError)
	gf = bindGameFlags(fs)
	_ = fs.Parse([]string{"-value", "-3"})
	if _, err := gf.patch(visited(fs)); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("negative value: %v", err)
	}
}

func Test_exitCode(t *testing.T) {
	t.Parallel()

	if exitCode(nil) != 0 || exitCode(errUsage) != 2 || exitCode(errReported) != 1 {
		t.Fatalf("exit codes")
	}
}
