/*
fixcat — FIX tag-value stream codec tools
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/
package encoder

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

const (
	MaxLevels    = 10
	MinPriceStep = 1
	MaxPriceStep = 10 // exclusive
	MinSize      = 1
	MaxSize      = 1000 // exclusive
)

var ErrInvalidBook = errors.New("invalid order book parameters")

// PxSz is the price and size of one book level.
type PxSz struct {
	Price uint32
	Size  uint32
}

// OrderBook is a fixed-capacity two-sided book. Levels are ordered away
// from the spread; only the first BidNum bids and AskNum asks are valid.
type OrderBook struct {
	Bids   [MaxLevels]PxSz
	Asks   [MaxLevels]PxSz
	BidNum int
	AskNum int
}

// RandomSource yields uniformly distributed integers in [lo, hi).
type RandomSource interface {
	Uint32Range(lo, hi uint32) uint32
}

// PCGSource is a RandomSource backed by math/rand/v2's PCG generator.
type PCGSource struct {
	r *rand.Rand
}

// NewRandomSource returns a deterministic source for seed. Seed 0 picks a
// random seed.
func NewRandomSource(seed uint64) *PCGSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &PCGSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *PCGSource) Uint32Range(lo, hi uint32) uint32 {
	return lo + s.r.Uint32N(hi-lo)
}

// Generate overwrites the book in place. Bid prices step down from
// midPrice and ask prices step up from it by [MinPriceStep, MaxPriceStep)
// per level; sizes are drawn from [MinSize, MaxSize).
func (b *OrderBook) Generate(rng RandomSource, bidNum, askNum int, midPrice uint32) error {
	if bidNum < 0 || bidNum > MaxLevels || askNum < 0 || askNum > MaxLevels {
		return fmt.Errorf("%w: levels must be within 0..%d, got %d bids and %d asks",
			ErrInvalidBook, MaxLevels, bidNum, askNum)
	}

	// Worst case stepping must keep bids above zero and asks inside uint32.
	span := uint64(bidNum) * (MaxPriceStep - 1)
	if bidNum > 0 && uint64(midPrice) <= span {
		return fmt.Errorf("%w: mid price %d too low for %d bid levels", ErrInvalidBook, midPrice, bidNum)
	}
	if uint64(midPrice)+uint64(askNum)*(MaxPriceStep-1) > math.MaxUint32 {
		return fmt.Errorf("%w: mid price %d too high for %d ask levels", ErrInvalidBook, midPrice, askNum)
	}

	b.BidNum = bidNum
	b.AskNum = askNum

	price := midPrice
	for i := range bidNum {
		price -= rng.Uint32Range(MinPriceStep, MaxPriceStep)
		b.Bids[i] = PxSz{Price: price, Size: rng.Uint32Range(MinSize, MaxSize)}
	}

	price = midPrice
	for i := range askNum {
		price += rng.Uint32Range(MinPriceStep, MaxPriceStep)
		b.Asks[i] = PxSz{Price: price, Size: rng.Uint32Range(MinSize, MaxSize)}
	}

	return nil
}

// BidLevels returns the occupied bid levels.
func (b *OrderBook) BidLevels() []PxSz { return b.Bids[:b.BidNum] }

// AskLevels returns the occupied ask levels.
func (b *OrderBook) AskLevels() []PxSz { return b.Asks[:b.AskNum] }

func (b *OrderBook) String() string {
	var sb strings.Builder

	sb.WriteString("BID\t\t\tASK\n")
	sb.WriteString("px\tsz\t\tpx\tsz\n")
	sb.WriteString("-----\t-----\t\t-----\t-----\n")

	for i := range max(b.BidNum, b.AskNum) {
		if i < b.BidNum {
			fmt.Fprintf(&sb, "%d\t%d\t\t", b.Bids[i].Price, b.Bids[i].Size)
		} else {
			sb.WriteString("\t\t\t")
		}
		if i < b.AskNum {
			fmt.Fprintf(&sb, "%d\t%d", b.Asks[i].Price, b.Asks[i].Size)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
