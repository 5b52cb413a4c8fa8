package cache

import "github.com/pomai-cache/corekv/internal/memberset"

// compactMemberMemory and generalMemberMemory are the per-member
// incremental costs of the two MemberSet encodings: an 8-byte int64
// slot versus a fixed general map-entry overhead. The member string's
// own bytes are not counted.
const (
	compactMemberMemory = 8
	generalMemberMemory = 40
)

// SAdd inserts member into key's member set, creating the set if key is
// absent. Returns ErrWrongType if key holds a different shape.
func (c *Cache) SAdd(key, member string) (bool, error) {
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
		e = &entry{shape: ShapeMemberSet, mset: memberset.New(c.cfg.MemberSetCap), memoryUsed: baseMemory}
		c.dict.Set(key, e)
		c.addMemory(baseMemory)
	} else {
		e = raw.(*entry)
		if e.shape != ShapeMemberSet {
			return false, ErrWrongType
		}
	}

	added, _ := e.mset.Add(member)
	if added {
		delta := int64(compactMemberMemory)
		if e.mset.Encoding() == memberset.EncodingGeneral {
			delta = int64(generalMemberMemory)
		}
		e.memoryUsed += delta
		c.addMemory(delta)
	}
	c.usage.Touch(key, now)
	return added, nil
}

// SRem removes member from key's member set, reporting whether it was
// present.
func (c *Cache) SRem(key, member string) (bool, error) {
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
	if e.shape != ShapeMemberSet {
		return false, ErrWrongType
	}

	wasGeneral := e.mset.Encoding() == memberset.EncodingGeneral
	removed := e.mset.Delete(member)
	if removed {
		delta := int64(compactMemberMemory)
		if wasGeneral {
			delta = int64(generalMemberMemory)
		}
		e.memoryUsed -= delta
		c.subtractMemory(delta)
		c.usage.Touch(key, now)
	}
	return removed, nil
}

// SIsMember reports whether member belongs to key's member set.
func (c *Cache) SIsMember(key, member string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	raw, ok := c.dict.Get(key)
	if !ok {
		c.misses++
		return false, nil
	}
	e := raw.(*entry)
	if e.shape != ShapeMemberSet {
		return false, ErrWrongType
	}
	present := e.mset.Has(member)
	if present {
		c.hits++
	} else {
		c.misses++
	}
	c.usage.Touch(key, now)
	return present, nil
}

// SMembers returns every member of key's member set, in no particular
// order.
func (c *Cache) SMembers(key string) ([]string, error) {
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
	if e.shape != ShapeMemberSet {
		return nil, ErrWrongType
	}
	c.hits++
	c.usage.Touch(key, now)
	return e.mset.Members(), nil
}

// SCard returns the number of members in key's member set.
func (c *Cache) SCard(key string) (int, error) {
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
	if e.shape != ShapeMemberSet {
		return 0, ErrWrongType
	}
	return e.mset.Size(), nil
}
