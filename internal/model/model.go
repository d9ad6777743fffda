// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// PlaceholderCover is used when a game has no cover image.
const PlaceholderCover = "/placeholder.svg?height=300&width=200"

// Game is a single tracked title owned by exactly one user.
type Game struct {
	ID            uuid.UUID // store-assigned PK
	OwnerID       uuid.UUID // FK -> users.id
	Title         string
	Platform      string // one of Platforms
	CoverURL      string
	ReleaseYear   int
	ReleaseDate   *time.Time // calendar date, optional
	Publisher     string
	Notes         string
	Condition     Condition
	PurchasePrice Money
	CurrentValue  Money
	IsFavorite    bool // meaningful only when !IsWishlist
	IsWishlist    bool // partitions collection vs wishlist
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GameDraft is a not-yet-persisted candidate record supplied to add.
type GameDraft struct {
	Title         string     `validate:"required,max=200"`
	Platform      string     `validate:"required,platform"`
	CoverURL      string     `validate:"omitempty,max=2048"`
	ReleaseYear   int        `validate:"gte=0,lte=9999"`
	ReleaseDate   *time.Time `validate:"-"`
	Publisher     string     `validate:"max=200"`
	Notes         string     `validate:"max=5000"`
	Condition     Condition  `validate:"omitempty,condition"`
	PurchasePrice Money      `validate:"gte=0"`
	CurrentValue  Money      `validate:"gte=0"`
	IsFavorite    bool
}

// GamePatch is a partial update; nil fields stay unchanged.
type GamePatch struct {
	Title         *string
	Platform      *string
	CoverURL      *string
	ReleaseYear   *int
	ReleaseDate   **time.Time // non-nil pointer to nil clears the date
	Publisher     *string
	Notes         *string
	Condition     *Condition
	PurchasePrice *Money
	CurrentValue  *Money
	IsFavorite    *bool
	IsWishlist    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p GamePatch) IsEmpty() bool {
	return p.Title == nil && p.Platform == nil && p.CoverURL == nil && p.ReleaseYear == nil &&
		p.ReleaseDate == nil && p.Publisher == nil && p.Notes == nil && p.Condition == nil &&
		p.PurchasePrice == nil && p.CurrentValue == nil && p.IsFavorite == nil && p.IsWishlist == nil
}

// TouchesIdentity reports whether the patch changes title, platform or wishlist membership,
// i.e. anything the uniqueness rule depends on.
func (p GamePatch) TouchesIdentity() bool {
	return p.Title != nil || p.Platform != nil || p.IsWishlist != nil
}

// Apply returns g with the patch fields applied.
func (p GamePatch) Apply(g Game) Game {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Platform != nil {
		g.Platform = *p.Platform
	}
	if p.CoverURL != nil {
		g.CoverURL = *p.CoverURL
	}
	if p.ReleaseYear != nil {
		g.ReleaseYear = *p.ReleaseYear
	}
	if p.ReleaseDate != nil {
		g.ReleaseDate = *p.ReleaseDate
	}
	if p.Publisher != nil {
		g.Publisher = *p.Publisher
	}
	if p.Notes != nil {
		g.Notes = *p.Notes
	}
	if p.Condition != nil {
		g.Condition = *p.Condition
	}
	if p.PurchasePrice != nil {
		g.PurchasePrice = *p.PurchasePrice
	}
	if p.CurrentValue != nil {
		g.CurrentValue = *p.CurrentValue
	}
	if p.IsFavorite != nil {
		g.IsFavorite = *p.IsFavorite
	}
	if p.IsWishlist != nil {
		g.IsWishlist = *p.IsWishlist
	}
	return g
}

// Profile is the per-identity profile row. It is never deleted by this system.
type Profile struct {
	ID          uuid.UUID // = identity id
	Email       string
	DisplayName *string
	AvatarURL   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Identity is the authenticated principal as seen by the auth provider.
type Identity struct {
	ID        uuid.UUID
	Email     string
	Metadata  map[string]string // provider-side user metadata, e.g. display_name
	CreatedAt time.Time
}

// Session is an active auth session.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        Identity
}

// SessionUser is the in-memory view of the signed-in user.
type SessionUser struct {
	Identity
	DisplayName string
}

// User represents an auth account. Passwords are never stored in plaintext.
type User struct {
	ID        uuid.UUID // PK
	Email     string    // unique, lower-cased
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user salt
	Metadata  map[string]string
	CreatedAt time.Time
}

// AuthSession is a server-side session row backing an access token (jti).
type AuthSession struct {
	ID        uuid.UUID // = token jti
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Active reports whether the session may still be used at now.
func (s AuthSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
