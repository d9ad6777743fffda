// Package notice turns operation outcomes into short user-facing messages.
package notice

import (
	"errors"
	"fmt"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
)

// Level is the severity of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notice is one message shown to the user.
type Notice struct {
	Level       Level
	Title       string
	Description string
}

func (n Notice) String() string {
	if n.Description == "" {
		return n.Title
	}
	return n.Title + ": " + n.Description
}

// Op names the operation that failed.
type Op string

const (
	OpLoad     Op = "load"
	OpAdd      Op = "add"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpFavorite Op = "favorite"
	OpMove     Op = "move"
	OpSignIn   Op = "signin"
	OpSignUp   Op = "signup"
	OpSignOut  Op = "signout"
	OpProfile  Op = "profile"
)

var failures = map[Op]Notice{
	OpLoad:     {Title: "Error Loading Games", Description: "Failed to load your game collection."},
	OpAdd:      {Title: "Error Adding Game", Description: "Failed to add the game to your collection."},
	OpUpdate:   {Title: "Error Updating Game", Description: "Failed to update the game."},
	OpDelete:   {Title: "Error Deleting Game", Description: "Failed to delete the game."},
	OpFavorite: {Title: "Error", Description: "Failed to update favorite status."},
	OpMove:     {Title: "Error", Description: "Failed to move game to collection."},
	OpSignIn:   {Title: "Sign In Failed"},
	OpSignUp:   {Title: "Sign Up Failed"},
	OpSignOut:  {Title: "Sign Out Failed"},
	OpProfile:  {Title: "Update Failed"},
}

// For maps an error returned by op to a notice.
func For(op Op, err error) Notice {
	var dup *errs.DuplicateGameError
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &dup):
		if op == OpMove {
			return failed("Game Already in Collection",
				fmt.Sprintf("%s for %s already exists in your collection.", dup.Title, dup.Platform))
		}
		return failed("Duplicate Game",
			fmt.Sprintf("%s for %s already exists in your %s.", dup.Title, dup.Platform, dup.Partition()))
	case errors.Is(err, errs.ErrNotAuthenticated):
		return failed("Authentication Error", "Your session has expired. Please sign in again.")
	case errors.Is(err, errs.ErrNotFound) && op != OpSignIn && op != OpSignUp:
		return failed("Game Not Found", "The game no longer exists. Reload to refresh your collection.")
	case errors.As(err, &ve):
		n := base(op)
		n.Description = ve.Error()
		return n
	case errors.Is(err, errs.ErrInvalidCredentials):
		return failed(base(op).Title, "Invalid email or password.")
	case errors.Is(err, errs.ErrRateLimited):
		return failed(base(op).Title, "Too many failed attempts. Try again later.")
	case errors.Is(err, errs.ErrAlreadyExists) && op == OpSignUp:
		return failed(base(op).Title, "An account with this email already exists.")
	}
	n := base(op)
	if n.Description == "" && err != nil {
		n.Description = err.Error()
	}
	return n
}

func base(op Op) Notice {
	if n, ok := failures[op]; ok {
		n.Level = LevelError
		return n
	}
	return Notice{Level: LevelError, Title: "Error"}
}

func failed(title, desc string) Notice {
	return Notice{Level: LevelError, Title: title, Description: desc}
}

func info(title, desc string) Notice {
	return Notice{Level: LevelInfo, Title: title, Description: desc}
}

func Added(g model.Game) Notice {
	if g.IsWishlist {
		return info("Game Added to Wishlist", g.Title+" has been added to your wishlist.")
	}
	return info("Game Added", g.Title+" has been added to your collection.")
}

func Updated(g model.Game) Notice { return info("Game Updated", g.Title+" has been updated.") }

func Deleted(title string) Notice { return info("Game Deleted", title+" has been removed.") }

// Favorite describes the state after a toggle.
func Favorite(g model.Game) Notice {
	if g.IsFavorite {
		return info("Added to Favorites", g.Title+" added to favorites.")
	}
	return info("Removed from Favorites", g.Title+" removed from favorites.")
}

func Moved(g model.Game) Notice {
	return info("Moved to Collection", g.Title+" moved from wishlist to collection.")
}

func SignedIn() Notice { return info("Welcome back!", "You have successfully signed in.") }

func SignedUp() Notice {
	return info("Account Created", "You can now sign in with your email and password.")
}

func SignedOut() Notice { return info("Signed Out", "You have been successfully signed out.") }

func ProfileUpdated() Notice {
	return info("Profile Updated", "Your profile has been successfully updated.")
}
