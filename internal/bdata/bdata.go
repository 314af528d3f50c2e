// Package bdata provides read-only reference data: contracts, the commodities
// they belong to, and trading session metadata. The trading gateway consults
// it to resolve instrument codes arriving on the wire; it never mutates it.
package bdata

// CoverMode is the per-commodity policy for how today's and prior-day lots
// are tracked and closed.
type CoverMode uint8

const (
	// CoverOpenClose tracks a single pool; today/prior split is derived
	// arithmetically from the reported today-quantity.
	CoverOpenClose CoverMode = iota
	// CoverToday requires closing today's lots separately; the exchange
	// flags each position row with its lot age.
	CoverToday
	// CoverNone closes in open order with no lot-age distinction.
	CoverNone
)

// Category classifies a commodity.
type Category uint8

const (
	CategoryFutures Category = iota
	CategoryOption
	CategoryStock
	CategoryCombination
)

// Commodity describes the product an instrument trades under.
type Commodity struct {
	ID        string
	Name      string
	Exchange  string
	Currency  string
	VolScale  int
	CoverMode CoverMode
	Category  Category
	Session   string
}

// Contract is one tradable instrument.
type Contract struct {
	Code      string
	Exchange  string
	Name      string
	Commodity string
}

// SessionInfo describes a trading session's clock.
type SessionInfo struct {
	ID       string
	Name     string
	Offset   int
	OpenMin  uint32
	CloseMin uint32
}

// Provider resolves reference data. Implementations must be safe for
// concurrent readers.
type Provider interface {
	// Contract resolves (instrument code, exchange) to a contract, nil when
	// unknown.
	Contract(code, exchange string) *Contract
	// Commodity resolves a contract to its commodity, nil when unknown.
	Commodity(c *Contract) *Commodity
	// Session resolves a session id, nil when unknown.
	Session(id string) *SessionInfo
}
