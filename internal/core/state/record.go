package state

// PriceRecord is the cached market snapshot for a pair. All price and volume
// fields are fixed-point integers scaled by 1e8; times are Unix seconds.
type PriceRecord struct {
	Pair        string `json:"pair"`
	OpenTime    int64  `json:"open_time"`
	CloseTime   int64  `json:"close_time"`
	UpdateTime  int64  `json:"update_time"`
	LastPrice   uint64 `json:"last_price"`
	LowPrice    uint64 `json:"low_price"`
	HighPrice   uint64 `json:"high_price"`
	Volume      uint64 `json:"volume"`
	QuoteVolume uint64 `json:"quote_volume"`
}

// NewPriceRecord returns the never-updated sentinel for pair: all zero fields,
// so CloseTime 0 keeps it permanently fresh until a feeder writes real data.
func NewPriceRecord(pair string) *PriceRecord {
	return &PriceRecord{Pair: pair}
}

// TicketStatus is the lifecycle state of a request ticket.
type TicketStatus uint8

const (
	Pending TicketStatus = iota
	Fulfilled
)

func (s TicketStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its lowercase name.
func (s TicketStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts the lowercase names produced by MarshalJSON.
func (s *TicketStatus) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"fulfilled"`:
		*s = Fulfilled
	default:
		*s = Pending
	}
	return nil
}

// RequestTicket records one get_price call. Fulfilled tickets stay in storage
// so consumers can audit what was answered and where.
type RequestTicket struct {
	Pair             string       `json:"pair"`
	TargetAddress    string       `json:"target_address"`
	TargetEntrypoint string       `json:"target_entrypoint"`
	Status           TicketStatus `json:"status"`
	CreatedAt        int64        `json:"created_at"`
	FulfilledAt      int64        `json:"fulfilled_at,omitempty"`
}
