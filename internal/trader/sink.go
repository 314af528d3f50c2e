package trader

// Sink receives everything the gateway reports upward. One implementation is
// registered per adapter instance. Entities handed to a Sink are transferred:
// the gateway drops its reference after the call and never mutates them
// afterwards.
type Sink interface {
	// OnConnected fires when the transport reports the front reachable.
	// Connectivity only; the session is not usable until OnLoginResult.
	OnConnected()
	// OnDisconnected fires on transport loss with the vendor reason code.
	OnDisconnected(reason int)
	// OnLoggedOut fires after a logout acknowledgement.
	OnLoggedOut()

	// OnLoginResult reports the outcome of the full login handshake. The
	// trading day is zero on failure.
	OnLoginResult(success bool, msg string, tradingDay uint32)

	// OnEntrust acknowledges an order insert; err is non-nil on rejection.
	OnEntrust(e *Entrust, err *Error)
	// OnEntrustOpt acknowledges an execution order insert.
	OnEntrustOpt(e *Entrust, err *Error)
	// OnTraderError reports a rejected cancel/modify, which has no entity of
	// its own to attach to.
	OnTraderError(err *Error)

	// Batch query results, delivered once per query as complete collections.
	OnOrders(orders []*OrderInfo)
	OnTrades(trades []*TradeInfo)
	OnPositions(positions []*PositionItem)
	OnAccounts(accounts []*AccountInfo)
	OnOrdersOpt(orders []*OrderInfo)

	// Streaming pushes, delivered one at a time as they occur.
	OnPushOrder(order *OrderInfo)
	OnPushOrderOpt(order *OrderInfo)
	OnPushTrade(trade *TradeInfo)
}
