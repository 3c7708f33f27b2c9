package state

// Storage is the oracle's entire mutable state. One instance is owned by the
// engine; operations receive a draft clone and the engine commits or discards
// it atomically, so nothing here needs locking.
type Storage struct {
	// Admin is the single administrator identity.
	Admin string `json:"admin"`

	// Whitelist holds the feeder identities authorized to submit updates.
	Whitelist []string `json:"whitelist"`

	// SupportedPairs holds the pair symbols the oracle reports prices for.
	SupportedPairs []string `json:"supported_pairs"`

	// Prices maps a pair symbol to its latest cached record. Entries survive
	// blacklisting of their pair; they just become unreachable until the pair
	// is whitelisted again.
	Prices map[string]*PriceRecord `json:"prices"`

	// Requests maps request id to ticket. Fulfilled tickets are retained as
	// read-only history.
	Requests map[uint64]*RequestTicket `json:"requests"`

	// Counter is the source of request ids. It holds the id the next
	// get_price call will be assigned.
	Counter uint64 `json:"counter"`

	// RequestPrice is the advertised fee for a get_price call. Informational:
	// set at genesis, readable over RPC, not enforced by the machine.
	RequestPrice uint64 `json:"request_price"`

	// Treasury is the accumulated value retained from deferred get_price
	// calls and unconstrained-value operations.
	Treasury uint64 `json:"treasury"`
}

// New returns an empty storage with allocated maps.
func New() *Storage {
	return &Storage{
		Prices:   make(map[string]*PriceRecord),
		Requests: make(map[uint64]*RequestTicket),
	}
}

// Clone returns a deep copy. The engine applies every operation to a clone so
// a failed operation can never leak partial mutations.
func (s *Storage) Clone() *Storage {
	c := &Storage{
		Admin:          s.Admin,
		Whitelist:      append([]string(nil), s.Whitelist...),
		SupportedPairs: append([]string(nil), s.SupportedPairs...),
		Prices:         make(map[string]*PriceRecord, len(s.Prices)),
		Requests:       make(map[uint64]*RequestTicket, len(s.Requests)),
		Counter:        s.Counter,
		RequestPrice:   s.RequestPrice,
		Treasury:       s.Treasury,
	}
	for pair, rec := range s.Prices {
		r := *rec
		c.Prices[pair] = &r
	}
	for id, tk := range s.Requests {
		t := *tk
		c.Requests[id] = &t
	}
	return c
}

// HasFeeder reports whether identity is on the whitelist.
func (s *Storage) HasFeeder(identity string) bool {
	for _, w := range s.Whitelist {
		if w == identity {
			return true
		}
	}
	return false
}

// AddFeeder appends identity to the whitelist. The caller must have checked
// membership first.
func (s *Storage) AddFeeder(identity string) {
	s.Whitelist = append(s.Whitelist, identity)
}

// RemoveFeeder removes identity from the whitelist.
func (s *Storage) RemoveFeeder(identity string) {
	for i, w := range s.Whitelist {
		if w == identity {
			s.Whitelist = append(s.Whitelist[:i], s.Whitelist[i+1:]...)
			return
		}
	}
}

// SupportsPair reports whether pair is currently supported.
func (s *Storage) SupportsPair(pair string) bool {
	for _, p := range s.SupportedPairs {
		if p == pair {
			return true
		}
	}
	return false
}

// AddPair marks pair as supported and seeds an empty record if the pair has
// never been written.
func (s *Storage) AddPair(pair string) {
	s.SupportedPairs = append(s.SupportedPairs, pair)
	if _, ok := s.Prices[pair]; !ok {
		s.Prices[pair] = NewPriceRecord(pair)
	}
}

// RemovePair removes pair from the supported set. The cached record is
// deliberately retained.
func (s *Storage) RemovePair(pair string) {
	for i, p := range s.SupportedPairs {
		if p == pair {
			s.SupportedPairs = append(s.SupportedPairs[:i], s.SupportedPairs[i+1:]...)
			return
		}
	}
}

// Price returns the cached record for pair, seeding a never-updated sentinel
// if the pair is supported but has no record yet.
func (s *Storage) Price(pair string) *PriceRecord {
	if rec, ok := s.Prices[pair]; ok {
		return rec
	}
	rec := NewPriceRecord(pair)
	s.Prices[pair] = rec
	return rec
}
