package model

// MaturityLevel is the exclusive level threshold for promotion. An account
// is matured once its level is strictly greater than this value.
const MaturityLevel = 29

// Account is a single leveled account row. Level is advanced by the
// external leveling process; this pipeline only creates rows at level 0
// and flips Banned when a matured account is promoted out of the tracking
// store.
type Account struct {
	Username string
	Password string
	Email    string
	Level    int
	Banned   bool
}

// Matured reports whether the account has crossed the promotion threshold
// and has not yet been consumed.
func (a Account) Matured() bool {
	return a.Level > MaturityLevel && !a.Banned
}

// Usernames extracts the username column from a list of accounts,
// preserving order.
func Usernames(accounts []Account) []string {
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.Username)
	}
	return names
}
