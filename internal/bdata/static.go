package bdata

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// StaticProvider holds reference data loaded once at startup.
type StaticProvider struct {
	commodities map[string]*Commodity
	contracts   map[string]*Contract // "EXCHANGE.code"
	sessions    map[string]*SessionInfo
}

// NewStaticProvider builds a provider from pre-assembled records. Intended
// for tests and embedders that source reference data elsewhere.
func NewStaticProvider(commodities []*Commodity, contracts []*Contract, sessions []*SessionInfo) *StaticProvider {
	p := &StaticProvider{
		commodities: make(map[string]*Commodity, len(commodities)),
		contracts:   make(map[string]*Contract, len(contracts)),
		sessions:    make(map[string]*SessionInfo, len(sessions)),
	}
	for _, c := range commodities {
		p.commodities[c.ID] = c
	}
	for _, c := range contracts {
		p.contracts[contractKey(c.Code, c.Exchange)] = c
	}
	for _, s := range sessions {
		p.sessions[s.ID] = s
	}
	return p
}

// Load reads reference data from a YAML file of the shape:
//
//	commodities:
//	  CFFEX.IF: {name: "CSI 300 Index Futures", exchange: CFFEX, currency: CNY,
//	             volscale: 300, covermode: opencover, category: futures, session: FD0930}
//	contracts:
//	  - {code: IF2309, exchange: CFFEX, commodity: CFFEX.IF}
//	sessions:
//	  FD0930: {name: "Financial Day", offset: 0}
func Load(path string) (*StaticProvider, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read base data file: %w", err)
	}

	var raw struct {
		Commodities map[string]struct {
			Name      string `mapstructure:"name"`
			Exchange  string `mapstructure:"exchange"`
			Currency  string `mapstructure:"currency"`
			VolScale  int    `mapstructure:"volscale"`
			CoverMode string `mapstructure:"covermode"`
			Category  string `mapstructure:"category"`
			Session   string `mapstructure:"session"`
		} `mapstructure:"commodities"`
		Contracts []struct {
			Code      string `mapstructure:"code"`
			Exchange  string `mapstructure:"exchange"`
			Name      string `mapstructure:"name"`
			Commodity string `mapstructure:"commodity"`
		} `mapstructure:"contracts"`
		Sessions map[string]struct {
			Name   string `mapstructure:"name"`
			Offset int    `mapstructure:"offset"`
		} `mapstructure:"sessions"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal base data: %w", err)
	}

	p := &StaticProvider{
		commodities: make(map[string]*Commodity, len(raw.Commodities)),
		contracts:   make(map[string]*Contract, len(raw.Contracts)),
		sessions:    make(map[string]*SessionInfo, len(raw.Sessions)),
	}
	for id, c := range raw.Commodities {
		cur := c.Currency
		if cur == "" {
			cur = "CNY"
		}
		vs := c.VolScale
		if vs == 0 {
			vs = 1
		}
		p.commodities[id] = &Commodity{
			ID:        id,
			Name:      c.Name,
			Exchange:  c.Exchange,
			Currency:  cur,
			VolScale:  vs,
			CoverMode: parseCoverMode(c.CoverMode),
			Category:  parseCategory(c.Category),
			Session:   c.Session,
		}
	}
	for _, c := range raw.Contracts {
		p.contracts[contractKey(c.Code, c.Exchange)] = &Contract{
			Code:      c.Code,
			Exchange:  c.Exchange,
			Name:      c.Name,
			Commodity: c.Commodity,
		}
	}
	for id, s := range raw.Sessions {
		p.sessions[id] = &SessionInfo{ID: id, Name: s.Name, Offset: s.Offset}
	}
	return p, nil
}

func (p *StaticProvider) Contract(code, exchange string) *Contract {
	return p.contracts[contractKey(code, exchange)]
}

func (p *StaticProvider) Commodity(c *Contract) *Commodity {
	if c == nil {
		return nil
	}
	return p.commodities[c.Commodity]
}

func (p *StaticProvider) Session(id string) *SessionInfo {
	return p.sessions[id]
}

func contractKey(code, exchange string) string {
	return exchange + "." + code
}

func parseCoverMode(s string) CoverMode {
	switch strings.ToLower(s) {
	case "covertoday", "today":
		return CoverToday
	case "none":
		return CoverNone
	default:
		return CoverOpenClose
	}
}

func parseCategory(s string) Category {
	switch strings.ToLower(s) {
	case "option":
		return CategoryOption
	case "stock":
		return CategoryStock
	case "combination", "comb":
		return CategoryCombination
	default:
		return CategoryFutures
	}
}

var _ Provider = (*StaticProvider)(nil)
