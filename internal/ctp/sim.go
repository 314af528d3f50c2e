package ctp

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// SimDriver is an in-memory Driver for paper trading and tests. Every order
// is accepted and immediately filled at its limit price; queries answer with
// whatever the simulated session has seen. It reproduces the callback
// ordering of the real front: request methods return before the matching
// event is observable.
type SimDriver struct {
	mu        sync.Mutex
	events    chan Event
	released  bool
	connected bool

	sessionID uint32
	day       string

	orders map[string]*Order // order ref -> last reported state
	trades []*Trade
	nextID int
}

// NewSimDriver creates a simulated driver for the given trading day. An empty
// day defaults to the current calendar date.
func NewSimDriver(day string) *SimDriver {
	if day == "" {
		day = time.Now().Format("20060102")
	}
	return &SimDriver{
		events:    make(chan Event, 256),
		sessionID: uint32(time.Now().Unix() & 0x7fffffff),
		day:       day,
		orders:    make(map[string]*Order),
	}
}

func (d *SimDriver) Connect(opts ConnectOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return fmt.Errorf("driver released")
	}
	d.connected = true
	d.emit(FrontConnected{})
	return nil
}

func (d *SimDriver) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil
	}
	d.released = true
	d.connected = false
	close(d.events)
	return nil
}

func (d *SimDriver) Events() <-chan Event { return d.events }

func (d *SimDriver) TradingDay() string { return d.day }

// emit drops events once the consumer stops draining rather than blocking a
// request call. Callers hold d.mu.
func (d *SimDriver) emit(ev Event) {
	if d.released {
		return
	}
	select {
	case d.events <- ev:
	default:
	}
}

func (d *SimDriver) checkLive() error {
	if d.released || !d.connected {
		return fmt.Errorf("transport not connected")
	}
	return nil
}

func (d *SimDriver) ReqAuthenticate(req *ReqAuthenticate, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspAuthenticate{Rsp: &RspInfo{}})
	return nil
}

func (d *SimDriver) ReqUserLogin(req *ReqUserLogin, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspLogin{
		Login: &RspUserLogin{
			TradingDay:  d.day,
			LoginTime:   time.Now().Format("15:04:05"),
			FrontID:     1,
			SessionID:   d.sessionID,
			MaxOrderRef: "1",
		},
		Rsp: &RspInfo{},
	})
	return nil
}

func (d *SimDriver) ReqUserLogout(req *ReqUserLogout, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspLogout{Rsp: &RspInfo{}})
	return nil
}

func (d *SimDriver) ReqOrderInsert(req *InputOrder, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}

	d.nextID++
	sysID := fmt.Sprintf("%12d", d.nextID)
	now := time.Now()

	ord := &Order{
		InstrumentID:        req.InstrumentID,
		ExchangeID:          req.ExchangeID,
		OrderRef:            req.OrderRef,
		OrderSysID:          sysID,
		Direction:           req.Direction,
		CombOffsetFlag:      req.CombOffsetFlag,
		OrderPriceType:      req.OrderPriceType,
		TimeCondition:       req.TimeCondition,
		LimitPrice:          req.LimitPrice,
		VolumeTotalOriginal: req.VolumeTotalOriginal,
		VolumeTraded:        0,
		VolumeTotal:         req.VolumeTotalOriginal,
		OrderStatus:         StatusNoTradeQueueing,
		OrderSubmitStatus:   SubmitAccepted,
		FrontID:             1,
		SessionID:           d.sessionID,
		InsertDate:          d.day,
		InsertTime:          now.Format("15:04:05"),
		StatusMsg:           "queued",
	}
	d.orders[req.OrderRef] = ord
	accepted := *ord
	d.emit(RtnOrder{Order: &accepted})

	filled := *ord
	filled.VolumeTraded = req.VolumeTotalOriginal
	filled.VolumeTotal = 0
	filled.OrderStatus = StatusAllTraded
	filled.StatusMsg = "all traded"
	d.orders[req.OrderRef] = &filled
	d.emit(RtnOrder{Order: &filled})

	trade := &Trade{
		InstrumentID: req.InstrumentID,
		ExchangeID:   req.ExchangeID,
		TradeID:      strconv.Itoa(d.nextID),
		OrderSysID:   sysID,
		Direction:    req.Direction,
		OffsetFlag:   req.CombOffsetFlag,
		Price:        req.LimitPrice,
		Volume:       req.VolumeTotalOriginal,
		TradeDate:    d.day,
		TradeTime:    now.Format("15:04:05"),
	}
	d.trades = append(d.trades, trade)
	d.emit(RtnTrade{Trade: trade})
	return nil
}

func (d *SimDriver) ReqOrderAction(req *InputOrderAction, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	ord, ok := d.orders[req.OrderRef]
	if !ok || ord.OrderStatus == StatusAllTraded || ord.OrderStatus == StatusCanceled {
		d.emit(RspOrderAction{Rsp: &RspInfo{ErrorID: 26, ErrorMsg: "order not cancellable"}})
		return nil
	}
	canceled := *ord
	canceled.OrderStatus = StatusCanceled
	canceled.StatusMsg = "canceled"
	d.orders[req.OrderRef] = &canceled
	d.emit(RtnOrder{Order: &canceled})
	return nil
}

func (d *SimDriver) ReqExecOrderInsert(req *InputExecOrder, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.nextID++
	d.emit(RtnExecOrder{Order: &ExecOrder{
		InstrumentID:      req.InstrumentID,
		ExchangeID:        req.ExchangeID,
		ExecOrderRef:      req.ExecOrderRef,
		ExecOrderSysID:    strconv.Itoa(d.nextID),
		PosiDirection:     req.PosiDirection,
		OffsetFlag:        req.OffsetFlag,
		Volume:            req.Volume,
		OrderSubmitStatus: SubmitAccepted,
		FrontID:           1,
		SessionID:         d.sessionID,
		InsertDate:        d.day,
		InsertTime:        time.Now().Format("15:04:05"),
	}})
	return nil
}

func (d *SimDriver) ReqExecOrderAction(req *InputExecOrderAction, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspExecOrderAction{Rsp: &RspInfo{}})
	return nil
}

func (d *SimDriver) ReqSettlementInfoConfirm(req *SettlementInfoConfirm, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspSettlementConfirm{
		Confirm: &SettlementInfoConfirm{ConfirmDate: d.day, ConfirmTime: req.ConfirmTime},
		Rsp:     &RspInfo{},
	})
	return nil
}

func (d *SimDriver) ReqQrySettlementInfoConfirm(req *QryField, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspQrySettlementConfirm{
		Confirm: &SettlementInfoConfirm{ConfirmDate: d.day},
		Rsp:     &RspInfo{},
		IsLast:  true,
	})
	return nil
}

func (d *SimDriver) ReqQryTradingAccount(req *QryField, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspQryAccount{
		Account: &TradingAccount{PreBalance: 1_000_000, Available: 1_000_000},
		Rsp:     &RspInfo{},
		IsLast:  true,
	})
	return nil
}

func (d *SimDriver) ReqQryInvestorPosition(req *QryField, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspQryPosition{Rsp: &RspInfo{}, IsLast: true})
	return nil
}

func (d *SimDriver) ReqQryOrder(req *QryField, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	refs := make([]*Order, 0, len(d.orders))
	for _, o := range d.orders {
		refs = append(refs, o)
	}
	if len(refs) == 0 {
		d.emit(RspQryOrder{Rsp: &RspInfo{}, IsLast: true})
		return nil
	}
	for i, o := range refs {
		d.emit(RspQryOrder{Order: o, Rsp: &RspInfo{}, IsLast: i == len(refs)-1})
	}
	return nil
}

func (d *SimDriver) ReqQryTrade(req *QryField, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	if len(d.trades) == 0 {
		d.emit(RspQryTrade{Rsp: &RspInfo{}, IsLast: true})
		return nil
	}
	for i, tr := range d.trades {
		d.emit(RspQryTrade{Trade: tr, Rsp: &RspInfo{}, IsLast: i == len(d.trades)-1})
	}
	return nil
}

func (d *SimDriver) ReqQryExecOrder(req *QryField, requestID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.emit(RspQryExecOrder{Rsp: &RspInfo{}, IsLast: true})
	return nil
}

var _ Driver = (*SimDriver)(nil)
