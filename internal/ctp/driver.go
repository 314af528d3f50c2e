package ctp

// ConnectOptions configures transport establishment.
type ConnectOptions struct {
	// Front is the trading front address.
	Front string
	// FlowDir is the directory the transport may use for its flow files.
	FlowDir string
	// Quick subscribes private/public streams from the latest message rather
	// than replaying the day's backlog.
	Quick bool
}

// Driver is the capability interface over the vendor trading API. Request
// methods return an error when the request could not be handed to the
// transport; acknowledgements and pushes arrive later as Events. A Driver
// may invoke callbacks on any goroutine; delivery through Events serializes
// them for the consumer.
type Driver interface {
	Connect(opts ConnectOptions) error
	Release() error

	// Events yields every inbound protocol callback. The channel is closed
	// by Release.
	Events() <-chan Event

	// TradingDay reports the exchange-assigned business date (YYYYMMDD) once
	// logged in.
	TradingDay() string

	ReqAuthenticate(req *ReqAuthenticate, requestID int) error
	ReqUserLogin(req *ReqUserLogin, requestID int) error
	ReqUserLogout(req *ReqUserLogout, requestID int) error
	ReqOrderInsert(req *InputOrder, requestID int) error
	ReqOrderAction(req *InputOrderAction, requestID int) error
	ReqExecOrderInsert(req *InputExecOrder, requestID int) error
	ReqExecOrderAction(req *InputExecOrderAction, requestID int) error
	ReqSettlementInfoConfirm(req *SettlementInfoConfirm, requestID int) error
	ReqQrySettlementInfoConfirm(req *QryField, requestID int) error
	ReqQryTradingAccount(req *QryField, requestID int) error
	ReqQryInvestorPosition(req *QryField, requestID int) error
	ReqQryOrder(req *QryField, requestID int) error
	ReqQryTrade(req *QryField, requestID int) error
	ReqQryExecOrder(req *QryField, requestID int) error
}
