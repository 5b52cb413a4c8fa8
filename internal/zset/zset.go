// Package zset implements the ordered-collection value shape: a skip
// list paired with a member->score map so membership and score lookups
// stay O(1) while rank and range queries stay O(log N). The two
// structures are mutated together from the caller's point of view --
// no intermediate state is ever observable from outside this package.
package zset

import (
	"math"

	"github.com/pomai-cache/corekv/internal/skiplist"
)

// AddResult reports whether ZAdd created a new member or only touched
// the score of an existing one.
type AddResult int

const (
	Added AddResult = iota
	Updated
)

// ZSet is the ordered-collection engine.
type ZSet struct {
	sl     *skiplist.SkipList
	scores map[string]float64
}

// New returns an empty ordered collection.
func New() *ZSet {
	return &ZSet{
		sl:     skiplist.New(),
		scores: make(map[string]float64),
	}
}

// Add inserts or updates member with score.
func (z *ZSet) Add(member string, score float64) AddResult {
	if old, ok := z.scores[member]; ok {
		if old == score {
			return Updated
		}
		z.sl.Delete(old, member)
		z.sl.Insert(score, member)
		z.scores[member] = score
		return Updated
	}

	z.sl.Insert(score, member)
	z.scores[member] = score
	return Added
}

// Rem removes member, reporting whether it was present.
func (z *ZSet) Rem(member string) bool {
	score, ok := z.scores[member]
	if !ok {
		return false
	}
	z.sl.Delete(score, member)
	delete(z.scores, member)
	return true
}

// Score returns member's score.
func (z *ZSet) Score(member string) (float64, bool) {
	score, ok := z.scores[member]
	return score, ok
}

// Rank returns member's 0-based rank in (score, member) order.
func (z *ZSet) Rank(member string) (int, bool) {
	score, ok := z.scores[member]
	if !ok {
		return 0, false
	}
	return z.sl.Rank(score, member)
}

// RangeByScore returns members with min <= score <= max in ascending
// (score, member) order, capped at limit results (limit <= 0 means
// unlimited).
func (z *ZSet) RangeByScore(min, max float64, limit int) []skiplist.Pair {
	return z.sl.RangeByScore(min, max, limit)
}

// Card returns the number of members.
func (z *ZSet) Card() int {
	return len(z.scores)
}

// Members returns every (member, score) pair in skip-list order.
func (z *ZSet) Members() []skiplist.Pair {
	return z.sl.RangeByScore(negInf, posInf, 0)
}

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)
