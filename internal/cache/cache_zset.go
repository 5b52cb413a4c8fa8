package cache

import "github.com/pomai-cache/corekv/internal/zset"

// perMemberMemory is the fixed per-member overhead of a skip-list node
// plus its member->score map entry, on top of 2 bytes/char of the
// member string.
const perMemberMemory = 80

// ZAdd inserts or updates member's score in the ordered collection at
// key, creating the collection if key is absent. Returns ErrWrongType
// if key holds a non-ordered-collection entry, and reports whether
// member was newly added (true) versus an existing member's score
// being updated (false).
func (c *Cache) ZAdd(key, member string, score float64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	c.evictIfNeededLocked()
	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	raw, ok := c.dict.Get(key)
	var e *entry
	if !ok {
		baseMemory := int64(len(key) * 2)
		e = &entry{shape: ShapeOrderedCollection, zset: zset.New(), memoryUsed: baseMemory}
		c.dict.Set(key, e)
		c.addMemory(baseMemory)
	} else {
		e = raw.(*entry)
		if e.shape != ShapeOrderedCollection {
			return false, ErrWrongType
		}
	}

	result := e.zset.Add(member, score)
	added := result == zset.Added
	if added {
		delta := int64(2*len(member) + perMemberMemory)
		e.memoryUsed += delta
		c.addMemory(delta)
	}
	c.usage.Touch(key, now)
	return added, nil
}

// ZRem removes member from key's ordered collection, reporting whether
// it was present. Returns ErrWrongType if key holds a different shape.
func (c *Cache) ZRem(key, member string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	raw, ok := c.dict.Get(key)
	if !ok {
		return false, nil
	}
	e := raw.(*entry)
	if e.shape != ShapeOrderedCollection {
		return false, ErrWrongType
	}

	removed := e.zset.Rem(member)
	if removed {
		delta := int64(2*len(member) + perMemberMemory)
		e.memoryUsed -= delta
		c.subtractMemory(delta)
		c.usage.Touch(key, now)
	}
	return removed, nil
}

// ZScore returns member's score within key's ordered collection.
func (c *Cache) ZScore(key, member string) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	raw, ok := c.dict.Get(key)
	if !ok {
		c.misses++
		return 0, false, nil
	}
	e := raw.(*entry)
	if e.shape != ShapeOrderedCollection {
		return 0, false, ErrWrongType
	}
	score, found := e.zset.Score(member)
	if found {
		c.hits++
		c.usage.Touch(key, now)
	} else {
		c.misses++
	}
	return score, found, nil
}

// ZRank returns member's 0-based rank within key's ordered collection.
func (c *Cache) ZRank(key, member string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	raw, ok := c.dict.Get(key)
	if !ok {
		c.misses++
		return 0, false, nil
	}
	e := raw.(*entry)
	if e.shape != ShapeOrderedCollection {
		return 0, false, ErrWrongType
	}
	rank, found := e.zset.Rank(member)
	if found {
		c.hits++
		c.usage.Touch(key, now)
	} else {
		c.misses++
	}
	return rank, found, nil
}

// ZRangeResult is one (member, score) pair returned by ZRangeByScore.
type ZRangeResult struct {
	Member string
	Score  float64
}

// ZRangeByScore returns members of key's ordered collection with
// min <= score <= max, ascending, capped at limit results (limit <= 0
// means unlimited).
func (c *Cache) ZRangeByScore(key string, min, max float64, limit int) ([]ZRangeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	raw, ok := c.dict.Get(key)
	if !ok {
		c.misses++
		return nil, nil
	}
	e := raw.(*entry)
	if e.shape != ShapeOrderedCollection {
		return nil, ErrWrongType
	}
	c.hits++
	c.usage.Touch(key, now)

	pairs := e.zset.RangeByScore(min, max, limit)
	out := make([]ZRangeResult, len(pairs))
	for i, p := range pairs {
		out[i] = ZRangeResult{Member: p.Member, Score: p.Score}
	}
	return out, nil
}

// ZCard returns the number of members in key's ordered collection.
func (c *Cache) ZCard(key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	raw, ok := c.dict.Get(key)
	if !ok {
		return 0, nil
	}
	e := raw.(*entry)
	if e.shape != ShapeOrderedCollection {
		return 0, ErrWrongType
	}
	return e.zset.Card(), nil
}
