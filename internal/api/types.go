package api

// Wishlist mirrors the payload returned by /wishlist/{slug}.
type Wishlist struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     int64  `json:"owner_id"`
}

// Gift describes a single wishable item in transport-friendly form.
// Authenticated requests see reservation and contributor detail; the
// unauthenticated projection omits them.
type Gift struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	Price            float64       `json:"price"`
	URL              string        `json:"url,omitempty"`
	ImageURL         string        `json:"image_url,omitempty"`
	IsReserved       bool          `json:"is_reserved"`
	Collected        float64       `json:"collected"`
	Progress         int           `json:"progress"`
	ReservedBy       *User         `json:"reserved_by,omitempty"`
	Contributors     []Contributor `json:"contributors,omitempty"`
	HasContributions bool          `json:"has_contributions,omitempty"`
}

// Contributor is one contribution toward a gift. Rows decoded from the
// backend carry the backend's integer id; rows synthesized locally from push
// events carry an opaque LocalKey instead, which is never sent back.
type Contributor struct {
	ID       int64   `json:"id,omitempty"`
	LocalKey string  `json:"-"`
	UserID   int64   `json:"user_id"`
	UserName string  `json:"user_name"`
	Amount   float64 `json:"amount"`
}

// User identifies an account as reported by the auth endpoints.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Stats mirrors the aggregate payload returned by /stats.
type Stats struct {
	TotalCollected     float64             `json:"total_collected"`
	TotalGoal          float64             `json:"total_goal"`
	RecentContributors []RecentContributor `json:"recent_contributors"`
}

// RecentContributor is a display-only entry in the landing stats.
type RecentContributor struct {
	Name string `json:"name"`
}

// LinkMetadata holds title, image and price scraped from an arbitrary
// product URL, used to pre-fill the gift creation form. Absent fields decode
// to zero values.
type LinkMetadata struct {
	Title string  `json:"title"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
}

// AuthResponse mirrors /auth/login and /auth/register responses.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// DraftGift carries the user-editable fields of a gift for create and
// update calls.
type DraftGift struct {
	WishlistID int64
	Title      string
	Price      float64
	URL        string
	ImageURL   string
}

// Remaining returns how much is still missing before the gift is fully
// funded, never negative.
func (g Gift) Remaining() float64 {
	remaining := g.Price - g.Collected
	if remaining < 0 {
		return 0
	}
	return remaining
}
