package mapping

// ContextStats is a snapshot of the context's cached state. Constructions
// counts entity construction sequences since the context was created; a
// steady-state context serves lookups without it moving.
type ContextStats struct {
	TotalEntities     int
	TotalProperties   int
	TotalAssociations int
	EntitiesWithID    int
	Constructions     int64
	CircularRefs      bool
}

// Stats computes statistics over a point-in-time snapshot of the cache.
func (c *Context) Stats() ContextStats {
	entities := c.Entities()

	stats := ContextStats{
		TotalEntities: len(entities),
		Constructions: c.constructions.Load(),
	}
	for _, e := range entities {
		stats.TotalProperties += len(e.properties)
		stats.TotalAssociations += len(e.assocs)
		if _, ok := e.IDProperty(); ok {
			stats.EntitiesWithID++
		}
	}

	stats.CircularRefs = len(NewEntityGraph(entities).DetectCycles()) > 0
	return stats
}
