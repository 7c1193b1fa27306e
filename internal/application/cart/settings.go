package cart

import "time"

// Settings are the operator-tunable switches of the shopping cart
type Settings struct {
	AppName                string
	EnableMarketplace      bool
	EnableLeaderboard      bool
	NotifyOnNewRequest     bool
	NotifyOnClaim          bool
	FulfilledRetentionDays int
	AbandonedCartDays      int
	PaginationSize         int
	LeaderboardSize        int
	DefaultHubs            []string
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		AppName:                "Shopping Cart",
		EnableMarketplace:      true,
		EnableLeaderboard:      true,
		NotifyOnNewRequest:     true,
		NotifyOnClaim:          true,
		FulfilledRetentionDays: 90,
		AbandonedCartDays:      30,
		PaginationSize:         25,
		LeaderboardSize:        25,
		DefaultHubs:            []string{"Jita", "Amarr", "Dodixie", "Rens", "Hek"},
	}
}

func (s Settings) pageSize() int {
	if s.PaginationSize < 1 {
		return 25
	}
	return s.PaginationSize
}

func (s Settings) leaderboardSize() int {
	if s.LeaderboardSize < 1 {
		return 25
	}
	return s.LeaderboardSize
}

func (s Settings) abandonedAfter() time.Duration {
	return time.Duration(s.AbandonedCartDays) * 24 * time.Hour
}

func (s Settings) retainFinishedFor() time.Duration {
	return time.Duration(s.FulfilledRetentionDays) * 24 * time.Hour
}
