package trader

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradefront/ctpgate/internal/ctp"
)

// fakeDriver records every request and lets the test script inbound events.
type fakeDriver struct {
	mu       sync.Mutex
	events   chan ctp.Event
	released bool
	requests []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{events: make(chan ctp.Event, 64)}
}

func (d *fakeDriver) record(name string) {
	d.mu.Lock()
	d.requests = append(d.requests, name)
	d.mu.Unlock()
}

func (d *fakeDriver) recorded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.requests))
	copy(out, d.requests)
	return out
}

func (d *fakeDriver) emit(ev ctp.Event) { d.events <- ev }

func (d *fakeDriver) Connect(opts ctp.ConnectOptions) error {
	d.emit(ctp.FrontConnected{})
	return nil
}

func (d *fakeDriver) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.released {
		d.released = true
		close(d.events)
	}
	return nil
}

func (d *fakeDriver) Events() <-chan ctp.Event { return d.events }
func (d *fakeDriver) TradingDay() string       { return "20230908" }

func (d *fakeDriver) ReqAuthenticate(req *ctp.ReqAuthenticate, requestID int) error {
	d.record("authenticate")
	return nil
}

func (d *fakeDriver) ReqUserLogin(req *ctp.ReqUserLogin, requestID int) error {
	d.record("login")
	return nil
}

func (d *fakeDriver) ReqUserLogout(req *ctp.ReqUserLogout, requestID int) error {
	d.record("logout")
	return nil
}

func (d *fakeDriver) ReqOrderInsert(req *ctp.InputOrder, requestID int) error {
	d.record("order_insert:" + req.OrderRef)
	return nil
}

func (d *fakeDriver) ReqOrderAction(req *ctp.InputOrderAction, requestID int) error {
	d.record(fmt.Sprintf("order_action:%d:%d:%s", req.FrontID, req.SessionID, req.OrderRef))
	return nil
}

func (d *fakeDriver) ReqExecOrderInsert(req *ctp.InputExecOrder, requestID int) error {
	d.record("exec_insert:" + req.ExecOrderRef)
	return nil
}

func (d *fakeDriver) ReqExecOrderAction(req *ctp.InputExecOrderAction, requestID int) error {
	d.record("exec_action:" + req.ExecOrderRef)
	return nil
}

func (d *fakeDriver) ReqSettlementInfoConfirm(req *ctp.SettlementInfoConfirm, requestID int) error {
	d.record("confirm")
	return nil
}

func (d *fakeDriver) ReqQrySettlementInfoConfirm(req *ctp.QryField, requestID int) error {
	d.record("qry_confirm")
	return nil
}

func (d *fakeDriver) ReqQryTradingAccount(req *ctp.QryField, requestID int) error {
	d.record("qry_account")
	return nil
}

func (d *fakeDriver) ReqQryInvestorPosition(req *ctp.QryField, requestID int) error {
	d.record("qry_position")
	return nil
}

func (d *fakeDriver) ReqQryOrder(req *ctp.QryField, requestID int) error {
	d.record("qry_order")
	return nil
}

func (d *fakeDriver) ReqQryTrade(req *ctp.QryField, requestID int) error {
	d.record("qry_trade")
	return nil
}

func (d *fakeDriver) ReqQryExecOrder(req *ctp.QryField, requestID int) error {
	d.record("qry_exec_order")
	return nil
}

type loginOutcome struct {
	success    bool
	msg        string
	tradingDay uint32
}

// recordingSink buffers every callback so tests can assert on them.
type recordingSink struct {
	connected    chan struct{}
	disconnected chan int
	loggedOut    chan struct{}
	logins       chan loginOutcome
	entrusts     chan *Error
	traderErrs   chan *Error
	pushOrders   chan *OrderInfo
	pushTrades   chan *TradeInfo
	orders       chan []*OrderInfo
	trades       chan []*TradeInfo
	positions    chan []*PositionItem
	accounts     chan []*AccountInfo
	ordersOpt    chan []*OrderInfo
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		connected:    make(chan struct{}, 8),
		disconnected: make(chan int, 8),
		loggedOut:    make(chan struct{}, 8),
		logins:       make(chan loginOutcome, 8),
		entrusts:     make(chan *Error, 8),
		traderErrs:   make(chan *Error, 8),
		pushOrders:   make(chan *OrderInfo, 32),
		pushTrades:   make(chan *TradeInfo, 32),
		orders:       make(chan []*OrderInfo, 8),
		trades:       make(chan []*TradeInfo, 8),
		positions:    make(chan []*PositionItem, 8),
		accounts:     make(chan []*AccountInfo, 8),
		ordersOpt:    make(chan []*OrderInfo, 8),
	}
}

func (s *recordingSink) OnConnected()              { s.connected <- struct{}{} }
func (s *recordingSink) OnDisconnected(reason int) { s.disconnected <- reason }
func (s *recordingSink) OnLoggedOut()              { s.loggedOut <- struct{}{} }
func (s *recordingSink) OnLoginResult(success bool, msg string, day uint32) {
	s.logins <- loginOutcome{success, msg, day}
}
func (s *recordingSink) OnEntrust(e *Entrust, err *Error)        { s.entrusts <- err }
func (s *recordingSink) OnEntrustOpt(e *Entrust, err *Error)     { s.entrusts <- err }
func (s *recordingSink) OnTraderError(err *Error)                { s.traderErrs <- err }
func (s *recordingSink) OnOrders(orders []*OrderInfo)            { s.orders <- orders }
func (s *recordingSink) OnTrades(trades []*TradeInfo)            { s.trades <- trades }
func (s *recordingSink) OnPositions(positions []*PositionItem)   { s.positions <- positions }
func (s *recordingSink) OnAccounts(accounts []*AccountInfo)      { s.accounts <- accounts }
func (s *recordingSink) OnOrdersOpt(orders []*OrderInfo)         { s.ordersOpt <- orders }
func (s *recordingSink) OnPushOrder(order *OrderInfo)            { s.pushOrders <- order }
func (s *recordingSink) OnPushOrderOpt(order *OrderInfo)         { s.pushOrders <- order }
func (s *recordingSink) OnPushTrade(trade *TradeInfo)            { s.pushTrades <- trade }

func newTestTrader(t *testing.T, driver ctp.Driver, sink Sink) *Trader {
	t.Helper()
	tr, err := New(Config{
		Broker:  "9999",
		User:    "tester",
		DataDir: t.TempDir(),
	}, driver, sink, testBData())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func waitState(t *testing.T, tr *Trader, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return tr.State() == want
	}, 5*time.Second, 10*time.Millisecond, "state never reached %s", want)
}

func hasRequest(d *fakeDriver, name string) func() bool {
	return func() bool {
		for _, r := range d.recorded() {
			if r == name {
				return true
			}
		}
		return false
	}
}

func loginEvent(frontID, sessionID uint32, maxRef string) ctp.RspLogin {
	return ctp.RspLogin{
		Login: &ctp.RspUserLogin{
			TradingDay:  "20230908",
			FrontID:     frontID,
			SessionID:   sessionID,
			MaxOrderRef: maxRef,
		},
		Rsp: &ctp.RspInfo{},
	}
}

func confirmedEvent(date string) ctp.RspQrySettlementConfirm {
	return ctp.RspQrySettlementConfirm{
		Confirm: &ctp.SettlementInfoConfirm{ConfirmDate: date},
		Rsp:     &ctp.RspInfo{},
		IsLast:  true,
	}
}

// toReady drives a fresh trader through connect and login to the ready state.
func toReady(t *testing.T, tr *Trader, d *fakeDriver, sink *recordingSink) {
	t.Helper()
	require.NoError(t, tr.Connect())
	<-sink.connected
	require.NoError(t, tr.Login())
	require.Eventually(t, hasRequest(d, "login"), 2*time.Second, 10*time.Millisecond)
	d.emit(loginEvent(9, 77, "5"))
	require.Eventually(t, hasRequest(d, "qry_confirm"), 2*time.Second, 10*time.Millisecond)
	d.emit(confirmedEvent("20230908"))
	waitState(t, tr, StateReady)
	res := <-sink.logins
	require.True(t, res.success)
	require.Equal(t, uint32(20230908), res.tradingDay)
}

func TestTrader_LoginAlreadyConfirmed(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink)

	// Settlement was already confirmed; no confirm request may have gone out.
	assert.NotContains(t, d.recorded(), "confirm")
}

func TestTrader_LoginNeedsConfirmation(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	require.NoError(t, tr.Connect())
	<-sink.connected
	require.NoError(t, tr.Login())
	require.Eventually(t, hasRequest(d, "login"), 2*time.Second, 10*time.Millisecond)
	d.emit(loginEvent(1, 2, "0"))
	require.Eventually(t, hasRequest(d, "qry_confirm"), 2*time.Second, 10*time.Millisecond)

	// Yesterday's confirmation date forces a fresh confirm request.
	d.emit(confirmedEvent("20230907"))
	require.Eventually(t, hasRequest(d, "confirm"), 2*time.Second, 10*time.Millisecond)
	waitState(t, tr, StateConfirmQueried)

	d.emit(ctp.RspSettlementConfirm{Rsp: &ctp.RspInfo{}})
	waitState(t, tr, StateReady)
	res := <-sink.logins
	assert.True(t, res.success)
}

func TestTrader_AuthenticateBeforeLogin(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr, err := New(Config{
		Broker:   "9999",
		User:     "tester",
		AppID:    "app",
		AuthCode: "code",
		DataDir:  t.TempDir(),
	}, d, sink, testBData())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	require.NoError(t, tr.Connect())
	<-sink.connected
	require.NoError(t, tr.Login())
	require.Eventually(t, hasRequest(d, "authenticate"), 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, StateAuthenticating, tr.State())

	d.emit(ctp.RspAuthenticate{Rsp: &ctp.RspInfo{}})
	require.Eventually(t, hasRequest(d, "login"), 2*time.Second, 10*time.Millisecond)
	waitState(t, tr, StateLoggingIn)
}

func TestTrader_LoginRejected(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	require.NoError(t, tr.Connect())
	<-sink.connected
	require.NoError(t, tr.Login())
	require.Eventually(t, hasRequest(d, "login"), 2*time.Second, 10*time.Millisecond)

	d.emit(ctp.RspLogin{Rsp: &ctp.RspInfo{ErrorID: 3, ErrorMsg: "wrong password"}})
	waitState(t, tr, StateLoginFailed)

	res := <-sink.logins
	assert.False(t, res.success)
	assert.Equal(t, "wrong password", res.msg)

	// A failed session rejects mutating calls until login is retried.
	assert.ErrorIs(t, tr.OrderInsert(&Entrust{}), ErrNotReady)
	_, err := tr.GenEntrustID()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestTrader_DisconnectResetsSession(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink)

	d.emit(ctp.FrontDisconnected{Reason: 0x1001})
	waitState(t, tr, StateNotLoggedIn)
	assert.Equal(t, 0x1001, <-sink.disconnected)

	assert.ErrorIs(t, tr.QueryAccount(), ErrNotReady)
	assert.Zero(t, tr.TradingDay())
}

func TestTrader_LateConfirmAfterDisconnectIgnored(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	// Reach the point where a confirm request is outstanding, then lose the
	// front before its acknowledgement arrives.
	require.NoError(t, tr.Connect())
	<-sink.connected
	require.NoError(t, tr.Login())
	require.Eventually(t, hasRequest(d, "login"), 2*time.Second, 10*time.Millisecond)
	d.emit(loginEvent(9, 77, "0"))
	require.Eventually(t, hasRequest(d, "qry_confirm"), 2*time.Second, 10*time.Millisecond)
	d.emit(confirmedEvent("20230907"))
	waitState(t, tr, StateConfirmQueried)

	d.emit(ctp.FrontDisconnected{Reason: 0x1001})
	waitState(t, tr, StateNotLoggedIn)
	<-sink.disconnected

	// Straggling settlement responses from the dead session must not move
	// the state machine or carry the old trading day.
	d.emit(ctp.RspSettlementConfirm{Rsp: &ctp.RspInfo{}})
	d.emit(confirmedEvent("20230908"))

	require.Never(t, func() bool {
		return tr.State() != StateNotLoggedIn
	}, 300*time.Millisecond, 20*time.Millisecond, "late confirm moved the session state")

	select {
	case res := <-sink.logins:
		t.Fatalf("late confirm produced a login result: %+v", res)
	default:
	}
	assert.Zero(t, tr.TradingDay())
}

func TestTrader_CloseClearsBatchState(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr, err := New(Config{
		Broker:  "9999",
		User:    "tester",
		DataDir: t.TempDir(),
	}, d, sink, testBData())
	require.NoError(t, err)

	toReady(t, tr, d, sink)

	// Leave an order query half accumulated, then tear down.
	require.NoError(t, tr.QueryOrders())
	require.Eventually(t, hasRequest(d, "qry_order"), 3*time.Second, 10*time.Millisecond)
	d.emit(ctp.RspQryOrder{Order: &ctp.Order{
		InstrumentID:      "cu2310",
		ExchangeID:        "SHFE",
		OrderRef:          "1",
		Direction:         ctp.DirBuy,
		CombOffsetFlag:    ctp.OffsetOpen,
		OrderStatus:       ctp.StatusNoTradeQueueing,
		OrderSubmitStatus: ctp.SubmitAccepted,
		FrontID:           9,
		SessionID:         77,
	}, Rsp: &ctp.RspInfo{}})

	require.NoError(t, tr.Close())
	assert.Nil(t, tr.orderBatch)
}

func TestTrader_GenEntrustIDAdoptsMaxOrderRef(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink) // login reports MaxOrderRef "5"

	id, err := tr.GenEntrustID()
	require.NoError(t, err)
	assert.Equal(t, EncodeEntrustID(9, 77, 6), id)

	id2, err := tr.GenEntrustID()
	require.NoError(t, err)
	assert.Equal(t, EncodeEntrustID(9, 77, 7), id2)
}

func TestTrader_OrderInsertGates(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	t.Run("not ready", func(t *testing.T) {
		assert.ErrorIs(t, tr.OrderInsert(&Entrust{}), ErrNotReady)
	})

	toReady(t, tr, d, sink)

	t.Run("wrong business type", func(t *testing.T) {
		assert.ErrorIs(t, tr.OrderInsert(&Entrust{Business: BusinessExecute}), ErrBusinessType)
		assert.ErrorIs(t, tr.OrderInsertOpt(&Entrust{Business: BusinessNormal}), ErrBusinessType)
	})

	t.Run("malformed entrust id", func(t *testing.T) {
		assert.ErrorIs(t, tr.OrderInsert(&Entrust{EntrustID: "1#2"}), ErrMalformedEntrustID)
	})
}

func TestTrader_OrderTagResolution(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink)

	id, err := tr.GenEntrustID()
	require.NoError(t, err)

	require.NoError(t, tr.OrderInsert(&Entrust{
		Code:      "cu2310",
		Exchange:  "SHFE",
		Volume:    2,
		Price:     68000,
		Direction: DirectionLong,
		Offset:    OffsetOpen,
		PriceType: PriceLimit,
		EntrustID: id,
		UserTag:   "strategy-7",
	}))
	require.Eventually(t, hasRequest(d, "order_insert:6"), 2*time.Second, 10*time.Millisecond)

	d.emit(ctp.RtnOrder{Order: &ctp.Order{
		InstrumentID:        "cu2310",
		ExchangeID:          "SHFE",
		OrderRef:            "6",
		OrderSysID:          "      1234",
		Direction:           ctp.DirBuy,
		CombOffsetFlag:      ctp.OffsetOpen,
		OrderPriceType:      ctp.PriceLimit,
		TimeCondition:       ctp.TimeGFD,
		LimitPrice:          68000,
		VolumeTotalOriginal: 2,
		VolumeTotal:         2,
		OrderStatus:         ctp.StatusNoTradeQueueing,
		OrderSubmitStatus:   ctp.SubmitAccepted,
		FrontID:             9,
		SessionID:           77,
		InsertDate:          "20230908",
		InsertTime:          "09:30:05",
	}})

	order := <-sink.pushOrders
	assert.Equal(t, id, order.EntrustID)
	assert.Equal(t, "strategy-7", order.UserTag)
	assert.Equal(t, DirectionLong, order.Direction)
	assert.False(t, order.IsError)
	assert.Equal(t, uint32(20230908), order.OrderDate)

	// The fill resolves its tag via the order system id written through above.
	d.emit(ctp.RtnTrade{Trade: &ctp.Trade{
		InstrumentID: "cu2310",
		ExchangeID:   "SHFE",
		TradeID:      "t1",
		OrderSysID:   "      1234",
		Direction:    ctp.DirBuy,
		OffsetFlag:   ctp.OffsetOpen,
		Price:        68000,
		Volume:       2,
		TradeDate:    "20230908",
		TradeTime:    "09:30:06",
	}})

	trade := <-sink.pushTrades
	assert.Equal(t, "strategy-7", trade.UserTag)
	// 5 per lot x 2 lots x 68000
	assert.Equal(t, 680000.0, trade.Amount)
}

func TestTrader_UntaggedOrderFallsBackToEntrustID(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink)

	// An order from another terminal has no stored tag; the entrust id itself
	// stands in.
	d.emit(ctp.RtnOrder{Order: &ctp.Order{
		InstrumentID:      "cu2310",
		ExchangeID:        "SHFE",
		OrderRef:          "99",
		Direction:         ctp.DirBuy,
		CombOffsetFlag:    ctp.OffsetOpen,
		OrderStatus:       ctp.StatusNoTradeQueueing,
		OrderSubmitStatus: ctp.SubmitAccepted,
		FrontID:           3,
		SessionID:         44,
		InsertDate:        "20230908",
		InsertTime:        "10:00:00",
	}})

	order := <-sink.pushOrders
	assert.Equal(t, EncodeEntrustID(3, 44, 99), order.EntrustID)
	assert.Equal(t, order.EntrustID, order.UserTag)
}

func TestTrader_InsertRejectionSurfacesEntrust(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink)

	d.emit(ctp.RspOrderInsert{
		Input: &ctp.InputOrder{
			InstrumentID:        "cu2310",
			ExchangeID:          "SHFE",
			OrderRef:            "6",
			Direction:           ctp.DirBuy,
			CombOffsetFlag:      ctp.OffsetOpen,
			LimitPrice:          1,
			VolumeTotalOriginal: 1,
		},
		Rsp: &ctp.RspInfo{ErrorID: 50, ErrorMsg: "price out of range"},
	})

	err := <-sink.entrusts
	require.NotNil(t, err)
	assert.Equal(t, 50, err.Code)
	assert.Equal(t, "price out of range", err.Msg)
}

func TestTrader_QueryBatches(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink)

	require.NoError(t, tr.QueryPositions())
	require.Eventually(t, hasRequest(d, "qry_position"), 3*time.Second, 10*time.Millisecond)

	d.emit(ctp.RspQryPosition{
		Position: &ctp.InvestorPosition{
			InstrumentID:  "cu2310",
			ExchangeID:    "SHFE",
			PosiDirection: ctp.PosiLong,
			Position:      3,
			TodayPosition: 3,
			UseMargin:     1000,
		},
		Rsp: &ctp.RspInfo{},
	})
	d.emit(ctp.RspQryPosition{Rsp: &ctp.RspInfo{}, IsLast: true})

	positions := <-sink.positions
	require.Len(t, positions, 1)
	assert.Equal(t, 3.0, positions[0].NewPosition)

	// Account and next query only dispatch after the position response
	// completed.
	require.NoError(t, tr.QueryAccount())
	require.Eventually(t, hasRequest(d, "qry_account"), 3*time.Second, 10*time.Millisecond)

	d.emit(ctp.RspQryAccount{
		Account: &ctp.TradingAccount{
			PreBalance:  1000,
			CloseProfit: 50,
			Commission:  10,
			Deposit:     100,
			Withdraw:    40,
		},
		Rsp:    &ctp.RspInfo{},
		IsLast: true,
	})

	accounts := <-sink.accounts
	require.Len(t, accounts, 1)
	assert.Equal(t, 1100.0, accounts[0].Balance)
	assert.Equal(t, "CNY", accounts[0].Currency)
}

func TestTrader_EmptyQueryDeliversEmptyBatch(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink)

	require.NoError(t, tr.QueryOrders())
	require.Eventually(t, hasRequest(d, "qry_order"), 3*time.Second, 10*time.Millisecond)
	d.emit(ctp.RspQryOrder{Rsp: &ctp.RspInfo{}, IsLast: true})

	orders := <-sink.orders
	assert.Empty(t, orders)
}

func TestTrader_OrderActionRoutesDecodedTriple(t *testing.T) {
	d := newFakeDriver()
	sink := newRecordingSink()
	tr := newTestTrader(t, d, sink)

	toReady(t, tr, d, sink)

	id := EncodeEntrustID(9, 77, 6)
	require.NoError(t, tr.OrderAction(&EntrustAction{
		Code:      "cu2310",
		Exchange:  "SHFE",
		EntrustID: id,
		OrderID:   "1234",
		Flag:      ActionCancel,
	}))
	require.Eventually(t, hasRequest(d, "order_action:9:77:6"), 2*time.Second, 10*time.Millisecond)

	d.emit(ctp.RspOrderAction{Rsp: &ctp.RspInfo{ErrorID: 26, ErrorMsg: "not cancellable"}})
	err := <-sink.traderErrs
	assert.Equal(t, 26, err.Code)
}

func TestTrader_SimDriverEndToEnd(t *testing.T) {
	sink := newRecordingSink()
	sim := ctp.NewSimDriver("20230908")
	tr, err := New(Config{
		Broker:  "9999",
		User:    "sim",
		DataDir: t.TempDir(),
	}, sim, sink, testBData())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	require.NoError(t, tr.Connect())
	<-sink.connected
	require.NoError(t, tr.Login())
	waitState(t, tr, StateReady)

	id, err := tr.GenEntrustID()
	require.NoError(t, err)
	require.NoError(t, tr.OrderInsert(&Entrust{
		Code:      "cu2310",
		Exchange:  "SHFE",
		Volume:    1,
		Price:     68000,
		Direction: DirectionLong,
		Offset:    OffsetOpen,
		PriceType: PriceLimit,
		EntrustID: id,
		UserTag:   "sim-tag",
	}))

	// Accepted, then filled.
	first := <-sink.pushOrders
	assert.Equal(t, StateNoTradeQueueing, first.State)
	second := <-sink.pushOrders
	assert.Equal(t, StateAllTraded, second.State)
	assert.Equal(t, "sim-tag", second.UserTag)

	trade := <-sink.pushTrades
	assert.Equal(t, "sim-tag", trade.UserTag)
	assert.Equal(t, 340000.0, trade.Amount)
}
