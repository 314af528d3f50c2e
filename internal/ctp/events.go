package ctp

// Event is one inbound protocol callback, reified as a value. The vendor SDK
// presents dozens of named callback methods; a Driver folds them into this
// closed set so the session engine can consume everything through a single
// channel and dispatch switch.
type Event interface {
	event()
}

// FrontConnected signals transport establishment. Connectivity only; the
// session is not usable until the login handshake completes.
type FrontConnected struct{}

// FrontDisconnected signals transport loss with the vendor reason code.
type FrontDisconnected struct {
	Reason int
}

// RspAuthenticate acknowledges the terminal authentication request.
type RspAuthenticate struct {
	Rsp *RspInfo
}

// RspLogin acknowledges the login request. Login is nil on rejection.
type RspLogin struct {
	Login *RspUserLogin
	Rsp   *RspInfo
}

// RspLogout acknowledges logout.
type RspLogout struct {
	Rsp *RspInfo
}

// RspQrySettlementConfirm answers the settlement confirmation status query.
type RspQrySettlementConfirm struct {
	Confirm *SettlementInfoConfirm
	Rsp     *RspInfo
	IsLast  bool
}

// RspSettlementConfirm acknowledges the settlement confirmation request.
type RspSettlementConfirm struct {
	Confirm *SettlementInfoConfirm
	Rsp     *RspInfo
}

// RspOrderInsert reports an order insert rejection (synchronous-by-callback
// or the error return channel; both carry the same payload).
type RspOrderInsert struct {
	Input *InputOrder
	Rsp   *RspInfo
}

// RspOrderAction reports the outcome of a cancel/modify request.
type RspOrderAction struct {
	Rsp *RspInfo
}

// RspExecOrderInsert reports an execution order insert rejection.
type RspExecOrderInsert struct {
	Input *InputExecOrder
	Rsp   *RspInfo
}

// RspExecOrderAction reports the outcome of an execution order cancel.
type RspExecOrderAction struct {
	Rsp *RspInfo
}

// RtnOrder is an unsolicited order state push.
type RtnOrder struct {
	Order *Order
}

// RtnTrade is an unsolicited fill push.
type RtnTrade struct {
	Trade *Trade
}

// RtnExecOrder is an unsolicited execution order push.
type RtnExecOrder struct {
	Order *ExecOrder
}

// RspQryOrder is one row of an order query response.
type RspQryOrder struct {
	Order  *Order
	Rsp    *RspInfo
	IsLast bool
}

// RspQryTrade is one row of a trade query response.
type RspQryTrade struct {
	Trade  *Trade
	Rsp    *RspInfo
	IsLast bool
}

// RspQryPosition is one row of a position query response.
type RspQryPosition struct {
	Position *InvestorPosition
	Rsp      *RspInfo
	IsLast   bool
}

// RspQryAccount carries the account snapshot.
type RspQryAccount struct {
	Account *TradingAccount
	Rsp     *RspInfo
	IsLast  bool
}

// RspQryExecOrder is one row of an execution order query response.
type RspQryExecOrder struct {
	Order  *ExecOrder
	Rsp    *RspInfo
	IsLast bool
}

func (FrontConnected) event()          {}
func (FrontDisconnected) event()       {}
func (RspAuthenticate) event()         {}
func (RspLogin) event()                {}
func (RspLogout) event()               {}
func (RspQrySettlementConfirm) event() {}
func (RspSettlementConfirm) event()    {}
func (RspOrderInsert) event()          {}
func (RspOrderAction) event()          {}
func (RspExecOrderInsert) event()      {}
func (RspExecOrderAction) event()      {}
func (RtnOrder) event()                {}
func (RtnTrade) event()                {}
func (RtnExecOrder) event()            {}
func (RspQryOrder) event()             {}
func (RspQryTrade) event()             {}
func (RspQryPosition) event()          {}
func (RspQryAccount) event()           {}
func (RspQryExecOrder) event()         {}
