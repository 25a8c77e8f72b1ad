package physics

// QueryResult is a hit that can be ranked. For casts the fraction is the
// position along the cast, for distance queries it is the distance.
type QueryResult interface {
	QueryFraction() float32
}

// Collector decides which hits a query keeps. Queries skip candidates beyond
// MaxFraction and stop at the first accepted hit when EarlyOutOnFirstHit is set.
type Collector[T QueryResult] interface {
	EarlyOutOnFirstHit() bool
	MaxFraction() float32
	NumHits() int
	// AddHit offers a hit with a fraction not beyond MaxFraction. It reports
	// whether the hit was kept.
	AddHit(hit T) bool
}

// AnyHitCollector stops the query at the first hit and keeps no details.
type AnyHitCollector[T QueryResult] struct {
	maxFraction float32
	numHits     int
}

func NewAnyHitCollector[T QueryResult](maxFraction float32) *AnyHitCollector[T] {
	return &AnyHitCollector[T]{maxFraction: maxFraction}
}

func (c *AnyHitCollector[T]) EarlyOutOnFirstHit() bool { return true }
func (c *AnyHitCollector[T]) MaxFraction() float32     { return c.maxFraction }
func (c *AnyHitCollector[T]) NumHits() int             { return c.numHits }

func (c *AnyHitCollector[T]) AddHit(hit T) bool {
	invariant(hit.QueryFraction() <= c.maxFraction, "hit beyond max fraction")
	c.numHits = 1
	return true
}

// ClosestHitCollector keeps the hit with the smallest fraction and shrinks
// MaxFraction to it, so later candidates must be closer.
type ClosestHitCollector[T QueryResult] struct {
	ClosestHit  T
	maxFraction float32
	numHits     int
}

func NewClosestHitCollector[T QueryResult](maxFraction float32) *ClosestHitCollector[T] {
	return &ClosestHitCollector[T]{maxFraction: maxFraction}
}

func (c *ClosestHitCollector[T]) EarlyOutOnFirstHit() bool { return false }
func (c *ClosestHitCollector[T]) MaxFraction() float32     { return c.maxFraction }
func (c *ClosestHitCollector[T]) NumHits() int             { return c.numHits }

func (c *ClosestHitCollector[T]) AddHit(hit T) bool {
	invariant(hit.QueryFraction() <= c.maxFraction, "hit beyond max fraction")
	c.maxFraction = hit.QueryFraction()
	c.ClosestHit = hit
	c.numHits = 1
	return true
}

// AllHitsCollector appends every hit to a caller owned slice.
type AllHitsCollector[T QueryResult] struct {
	AllHits     *[]T
	maxFraction float32
}

func NewAllHitsCollector[T QueryResult](maxFraction float32, allHits *[]T) *AllHitsCollector[T] {
	return &AllHitsCollector[T]{AllHits: allHits, maxFraction: maxFraction}
}

func (c *AllHitsCollector[T]) EarlyOutOnFirstHit() bool { return false }
func (c *AllHitsCollector[T]) MaxFraction() float32     { return c.maxFraction }
func (c *AllHitsCollector[T]) NumHits() int             { return len(*c.AllHits) }

func (c *AllHitsCollector[T]) AddHit(hit T) bool {
	invariant(hit.QueryFraction() <= c.maxFraction, "hit beyond max fraction")
	*c.AllHits = append(*c.AllHits, hit)
	return true
}
