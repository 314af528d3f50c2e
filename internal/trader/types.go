// Package trader implements the session and protocol-translation engine that
// bridges the internal order/position/trade model to a CTP-style trading
// front: the connection/login/settlement state machine, the serialized query
// dispatcher, the entrust-id codec, the response translators, and the
// position aggregation applied to query batches.
package trader

import "time"

// Direction is the net exposure a fill or position works toward.
type Direction uint8

const (
	DirectionLong Direction = iota
	DirectionShort
	DirectionNet
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "long"
	case DirectionShort:
		return "short"
	default:
		return "net"
	}
}

// OffsetType says whether an order opens or closes exposure.
type OffsetType uint8

const (
	OffsetOpen OffsetType = iota
	OffsetClose
	OffsetCloseToday
	OffsetCloseYesterday
	OffsetForceClose
)

// PriceType selects the pricing instruction for an order.
type PriceType uint8

const (
	PriceAny PriceType = iota
	PriceLimit
	PriceBest
	PriceLast
)

// TimeCondition selects how long an order rests.
type TimeCondition uint8

const (
	TimeGFD TimeCondition = iota // good for day
	TimeIOC                      // immediate or cancel
	TimeGFS                      // good for section
)

// OrderState mirrors the exchange's order status alphabet; the values are
// adopted from the wire byte so unmapped pushes stay inspectable.
type OrderState byte

const (
	StateAllTraded             OrderState = '0'
	StatePartTradedQueueing    OrderState = '1'
	StatePartTradedNotQueueing OrderState = '2'
	StateNoTradeQueueing       OrderState = '3'
	StateNoTradeNotQueueing    OrderState = '4'
	StateCanceled              OrderState = '5'
	StateSubmitting            OrderState = 'a'
	StateNotTouched            OrderState = 'b'
	StateTouched               OrderState = 'c'
)

// ActionFlag distinguishes cancel from modify on an order action.
type ActionFlag uint8

const (
	ActionCancel ActionFlag = iota
	ActionModify
)

// BusinessType classifies an entrust: a normal order or an execution
// (exercise) order against an option position.
type BusinessType uint8

const (
	BusinessNormal BusinessType = iota
	BusinessExecute
)

// Entrust is an outbound order intent. Consumed once per submission attempt.
type Entrust struct {
	Code     string
	Exchange string
	Volume   float64
	Price    float64

	Direction Direction
	Offset    OffsetType
	PriceType PriceType
	TimeCond  TimeCondition
	Business  BusinessType

	// EntrustID is the correlation token assigned via GenEntrustID, or empty
	// for tag-less fire-and-forget submissions.
	EntrustID string
	// UserTag is the caller-supplied tag persisted for later resolution.
	UserTag string
}

// EntrustAction is an outbound cancel/modify intent.
type EntrustAction struct {
	Code     string
	Exchange string
	Volume   float64
	Price    float64

	Flag     ActionFlag
	Business BusinessType

	// EntrustID must decode to the (front, session, ref) triple of the order
	// being acted on.
	EntrustID string
	// OrderID is the exchange-assigned order system id.
	OrderID string
	UserTag string
}

// OrderInfo is the acknowledged state of an order. Only inbound pushes and
// query responses produce it.
type OrderInfo struct {
	Code     string
	Exchange string
	Volume   float64
	Price    float64

	Direction Direction
	Offset    OffsetType
	PriceType PriceType
	TimeCond  TimeCondition
	Business  BusinessType

	VolTraded float64
	VolLeft   float64

	State    OrderState
	IsError  bool
	StateMsg string

	OrderDate uint32 // YYYYMMDD
	OrderTime time.Time

	EntrustID string
	OrderID   string
	UserTag   string
}

// TradeInfo is a fill.
type TradeInfo struct {
	Code     string
	Exchange string

	TradeID  string
	RefOrder string

	Direction Direction
	Offset    OffsetType

	Volume float64
	Price  float64
	Amount float64 // volscale x volume x price

	TradeDate uint32 // YYYYMMDD
	TradeTime time.Time
	TradeType byte

	UserTag string
}

// PositionItem is the consolidated position for one (instrument, direction)
// key within a query batch.
type PositionItem struct {
	Code     string
	Exchange string
	Currency string

	Direction Direction

	PrePosition float64
	NewPosition float64

	Margin       float64
	DynProfit    float64
	PositionCost float64
	AvgPrice     float64

	AvailPrePos float64
	AvailNewPos float64
}

// TotalPosition is the combined prior-day and today quantity.
func (p *PositionItem) TotalPosition() float64 {
	return p.PrePosition + p.NewPosition
}

// AccountInfo is the account snapshot the exchange reports.
type AccountInfo struct {
	Description string
	Currency    string

	PreBalance       float64
	Balance          float64
	CloseProfit      float64
	DynProfit        float64
	Margin           float64
	Available        float64
	Commission       float64
	FrozenMargin     float64
	FrozenCommission float64
	Deposit          float64
	Withdraw         float64
}

// Error is a protocol rejection surfaced to the sink.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// State is the session lifecycle state.
type State uint8

const (
	StateNotLoggedIn State = iota
	StateAuthenticating
	StateLoggingIn
	StateLoggedIn
	StateConfirmQueried
	StateConfirmed
	StateReady
	StateLoginFailed
)

func (s State) String() string {
	switch s {
	case StateNotLoggedIn:
		return "not_logged_in"
	case StateAuthenticating:
		return "authenticating"
	case StateLoggingIn:
		return "logging_in"
	case StateLoggedIn:
		return "logged_in"
	case StateConfirmQueried:
		return "confirm_queried"
	case StateConfirmed:
		return "confirmed"
	case StateReady:
		return "ready"
	case StateLoginFailed:
		return "login_failed"
	default:
		return "unknown"
	}
}
