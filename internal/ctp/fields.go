package ctp

// RspInfo carries the outcome of a request. ErrorID zero means success.
type RspInfo struct {
	ErrorID  int
	ErrorMsg string
}

// IsError reports whether a response info block denotes a rejection.
func (r *RspInfo) IsError() bool {
	return r != nil && r.ErrorID != 0
}

// ReqAuthenticate is the terminal authentication request issued before login.
type ReqAuthenticate struct {
	BrokerID string
	UserID   string
	AppID    string
	AuthCode string
}

// ReqUserLogin is the session login request.
type ReqUserLogin struct {
	BrokerID        string
	UserID          string
	Password        string
	UserProductInfo string
}

// RspUserLogin is the login acknowledgement carrying the session identity.
type RspUserLogin struct {
	TradingDay  string
	LoginTime   string
	FrontID     uint32
	SessionID   uint32
	MaxOrderRef string
}

// ReqUserLogout tears down the logical session.
type ReqUserLogout struct {
	BrokerID string
	UserID   string
}

// QryField is the common broker/investor scope shared by all batch queries.
type QryField struct {
	BrokerID   string
	InvestorID string
}

// SettlementInfoConfirm acknowledges (or reports) settlement confirmation.
type SettlementInfoConfirm struct {
	BrokerID    string
	InvestorID  string
	ConfirmDate string
	ConfirmTime string
}

// InputOrder is an outbound order insert.
type InputOrder struct {
	BrokerID            string
	InvestorID          string
	InstrumentID        string
	ExchangeID          string
	OrderRef            string
	OrderPriceType      byte
	Direction           byte
	CombOffsetFlag      byte
	CombHedgeFlag       byte
	LimitPrice          float64
	VolumeTotalOriginal int
	TimeCondition       byte
	VolumeCondition     byte
	MinVolume           int
	ContingentCondition byte
	ForceCloseReason    byte
	IsAutoSuspend       bool
	UserForceClose      bool
}

// InputOrderAction cancels or modifies a live order.
type InputOrderAction struct {
	BrokerID     string
	InvestorID   string
	OrderRef     string
	FrontID      uint32
	SessionID    uint32
	ActionFlag   byte
	InstrumentID string
	ExchangeID   string
	OrderSysID   string
	LimitPrice   float64
	VolumeChange int
}

// Order is an order state report, pushed or returned by query.
type Order struct {
	BrokerID            string
	InvestorID          string
	InstrumentID        string
	ExchangeID          string
	OrderRef            string
	OrderSysID          string
	Direction           byte
	CombOffsetFlag      byte
	OrderPriceType      byte
	TimeCondition       byte
	LimitPrice          float64
	VolumeTotalOriginal int
	VolumeTraded        int
	VolumeTotal         int
	OrderStatus         byte
	OrderSubmitStatus   byte
	FrontID             uint32
	SessionID           uint32
	InsertDate          string
	InsertTime          string
	StatusMsg           string
}

// Trade is a fill report.
type Trade struct {
	BrokerID     string
	InvestorID   string
	InstrumentID string
	ExchangeID   string
	TradeID      string
	OrderSysID   string
	Direction    byte
	OffsetFlag   byte
	Price        float64
	Volume       int
	TradeDate    string
	TradeTime    string
	TradeType    byte
}

// InvestorPosition is one fragment of a position query response. The exchange
// reports positions in per-lot-age rows; the gateway merges them.
type InvestorPosition struct {
	InstrumentID   string
	ExchangeID     string
	PosiDirection  byte
	PositionDate   byte
	Position       int
	TodayPosition  int
	LongFrozen     int
	ShortFrozen    int
	UseMargin      float64
	PositionProfit float64
	PositionCost   float64
}

// TradingAccount is the account snapshot returned by an account query.
type TradingAccount struct {
	PreBalance       float64
	CloseProfit      float64
	PositionProfit   float64
	CurrMargin       float64
	Available        float64
	Commission       float64
	FrozenMargin     float64
	FrozenCommission float64
	Deposit          float64
	Withdraw         float64
}

// InputExecOrder is an outbound execution (exercise) order insert.
type InputExecOrder struct {
	BrokerID      string
	InvestorID    string
	InstrumentID  string
	ExchangeID    string
	ExecOrderRef  string
	PosiDirection byte
	OffsetFlag    byte
	HedgeFlag     byte
	ActionType    byte
	CloseFlag     byte
	Volume        int
}

// InputExecOrderAction cancels a live execution order.
type InputExecOrderAction struct {
	BrokerID       string
	InvestorID     string
	ExecOrderRef   string
	FrontID        uint32
	SessionID      uint32
	ActionFlag     byte
	InstrumentID   string
	ExchangeID     string
	ExecOrderSysID string
}

// ExecOrder is an execution order state report.
type ExecOrder struct {
	InstrumentID      string
	ExchangeID        string
	ExecOrderRef      string
	ExecOrderSysID    string
	PosiDirection     byte
	OffsetFlag        byte
	Volume            int
	OrderSubmitStatus byte
	FrontID           uint32
	SessionID         uint32
	InsertDate        string
	InsertTime        string
	StatusMsg         string
}
