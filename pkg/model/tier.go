package model

import (
	"errors"
	"fmt"
	"strings"
)

// Tier identifies one of the precomputed credible intervals.
type Tier int

const (
	Tier65 Tier = iota
	Tier95
)

// String returns the percentage label of the tier.
func (t Tier) String() string {
	switch t {
	case Tier65:
		return "65%"
	case Tier95:
		return "95%"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Key returns the short key used on the command line and in URLs.
func (t Tier) Key() string {
	switch t {
	case Tier65:
		return "q65"
	case Tier95:
		return "q95"
	default:
		return ""
	}
}

// Bound is the direction of a credible-interval edge.
type Bound int

const (
	BoundUpper Bound = iota
	BoundLower
)

func (b Bound) String() string {
	if b == BoundUpper {
		return "Upper"
	}
	return "Lower"
}

// ErrUnknownTier is returned by ParseBounds for unsupported tier keys.
var ErrUnknownTier = errors.New("unknown credible bound")

// Bounds is the set of tiers requested for rendering. Only the four
// values declared below are valid.
type Bounds uint8

const (
	BoundsNone Bounds = 0
	Bounds65   Bounds = 1 << Tier65
	Bounds95   Bounds = 1 << Tier95
	BoundsBoth Bounds = Bounds65 | Bounds95
)

// Has reports whether t is requested.
func (b Bounds) Has(t Tier) bool {
	return b&(1<<t) != 0
}

// With returns b with t added.
func (b Bounds) With(t Tier) Bounds { return b | 1<<t }

// Toggle flips t in b.
func (b Bounds) Toggle(t Tier) Bounds { return b ^ 1<<t }

// DrawOrder returns the tiers in the order their bands must be stacked:
// the wider 95% band goes underneath the 65% one.
func (b Bounds) DrawOrder() []Tier {
	switch b {
	case BoundsNone:
		return nil
	case Bounds65:
		return []Tier{Tier65}
	case Bounds95:
		return []Tier{Tier95}
	case BoundsBoth:
		return []Tier{Tier95, Tier65}
	default:
		panic(fmt.Sprintf("model: invalid bounds %#x", uint8(b)))
	}
}

// Keys returns the tier keys in ascending tier order.
func (b Bounds) Keys() []string {
	var keys []string
	for _, t := range []Tier{Tier65, Tier95} {
		if b.Has(t) {
			keys = append(keys, t.Key())
		}
	}
	return keys
}

func (b Bounds) String() string {
	keys := b.Keys()
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ",")
}

// ParseBounds parses tier keys such as "q65", "95" or "q65,q95".
// Blank input yields BoundsNone.
func ParseBounds(values []string) (Bounds, error) {
	var b Bounds
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			switch part {
			case "":
				continue
			case "q65", "65", "65%":
				b = b.With(Tier65)
			case "q95", "95", "95%":
				b = b.With(Tier95)
			case "none":
				continue
			default:
				return BoundsNone, fmt.Errorf("%w: %q", ErrUnknownTier, part)
			}
		}
	}
	return b, nil
}

// MarshalText encodes the set as comma-separated tier keys.
func (b Bounds) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts the forms understood by ParseBounds.
func (b *Bounds) UnmarshalText(text []byte) error {
	parsed, err := ParseBounds([]string{string(text)})
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
