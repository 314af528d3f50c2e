// Package ctp models the wire surface of a CTP-style futures/options trading
// front: the request/response field sets, the single-byte protocol constants,
// and the Driver capability interface the session engine talks through. The
// vendor SDK itself is never linked here; a Driver implementation owns that.
package ctp

// Direction of an order as it travels on the wire.
const (
	DirBuy  byte = '0'
	DirSell byte = '1'
)

// Combined offset flags.
const (
	OffsetOpen           byte = '0'
	OffsetClose          byte = '1'
	OffsetForceClose     byte = '2'
	OffsetCloseToday     byte = '3'
	OffsetCloseYesterday byte = '4'
)

// Position direction reported on position rows and exec orders.
const (
	PosiNet   byte = '1'
	PosiLong  byte = '2'
	PosiShort byte = '3'
)

// Order price types.
const (
	PriceAny       byte = '1'
	PriceLimit     byte = '2'
	PriceBest      byte = '3'
	PriceLast      byte = '4'
	PriceFiveLevel byte = 'G'
)

// Time conditions.
const (
	TimeIOC byte = '1'
	TimeGFS byte = '2'
	TimeGFD byte = '3'
)

// Order status values pushed by the exchange.
const (
	StatusAllTraded             byte = '0'
	StatusPartTradedQueueing    byte = '1'
	StatusPartTradedNotQueueing byte = '2'
	StatusNoTradeQueueing       byte = '3'
	StatusNoTradeNotQueueing    byte = '4'
	StatusCanceled              byte = '5'
	StatusUnknown               byte = 'a'
	StatusNotTouched            byte = 'b'
	StatusTouched               byte = 'c'
)

// Order submit status. Values at or beyond SubmitInsertRejected mean the
// request was thrown out before reaching the book.
const (
	SubmitInsertSubmitted byte = '0'
	SubmitCancelSubmitted byte = '1'
	SubmitModifySubmitted byte = '2'
	SubmitAccepted        byte = '3'
	SubmitInsertRejected  byte = '4'
	SubmitCancelRejected  byte = '5'
	SubmitModifyRejected  byte = '6'
)

// Action flags for order actions.
const (
	ActionDelete byte = '0'
	ActionModify byte = '3'
)

// Hedge flags. The gateway only ever trades speculative.
const (
	HedgeSpeculation byte = '1'
)

// Volume/contingent/force-close condition defaults used on every insert.
const (
	VolumeAny            byte = '1'
	ContingentImmediate  byte = '1'
	ForceCloseNotForced  byte = '0'
	ExecActionTypeExec   byte = '1'
	ExecCloseFlagAuto    byte = '0'
	PositionDateToday    byte = '1'
	PositionDateHistory  byte = '2'
)
