package user

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   string
	Username string
}

// User carries the cumulative fantasy score. FantasyPoints is only ever
// mutated through atomic deltas so concurrent race reconciliations cannot
// overwrite each other.
type User struct {
	ID            string
	Username      string
	FantasyPoints int
}
