package gameplay

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownTier = errors.New("unknown printer tier")

// Tier is the grade of a printer. Higher tiers cost more and print faster.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierDiamond
)

var tierNames = [...]string{"bronze", "silver", "gold", "diamond"}

func (t Tier) String() string {
	if t >= 0 && int(t) < len(tierNames) {
		return tierNames[t]
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == name {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Tiers lists every tier from cheapest to most expensive.
func Tiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold, TierDiamond}
}

// TierConfig is what a printer of one tier costs and how it prints: Rate
// coins every Interval.
type TierConfig struct {
	Price    int64
	Rate     int64
	Interval time.Duration
}

// fallbackTier applies to tiers missing from a Printers' table.
var fallbackTier = TierConfig{Rate: 25, Interval: time.Minute}

func DefaultTiers() map[Tier]TierConfig {
	return map[Tier]TierConfig{
		TierBronze:  {Price: 1000, Rate: 25, Interval: 60 * time.Second},
		TierSilver:  {Price: 2500, Rate: 25, Interval: 45 * time.Second},
		TierGold:    {Price: 5000, Rate: 25, Interval: 30 * time.Second},
		TierDiamond: {Price: 10000, Rate: 25, Interval: 15 * time.Second},
	}
}
