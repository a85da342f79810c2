package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/quantick/barpipe/pkg/errors"
	"github.com/quantick/barpipe/pkg/logger"
)

const defaultRequestTimeout = 15 * time.Second

// Instrument is one tradable instrument from the vendor's symbol master.
type Instrument struct {
	Token    int64
	Symbol   string
	Segment  string
	Exchange string
	LotSize  int64
	Name     string
}

// Config holds the vendor REST endpoint and the universe filter.
type Config struct {
	RestURL  string
	User     string
	Password string
	Segment  string
	Exchange string
	Timeout  time.Duration
}

// Directory resolves the tradable symbol universe from the vendor's REST
// symbol master.
type Directory struct {
	cfg    Config
	client *http.Client
	logger logger.Interface
}

// symbolResponse is the vendor's symbol master envelope. Records are
// positional arrays: [token, symbol, segment, exchange, lotSize, name].
// Records is a pointer so an absent key is distinguishable from an empty
// but well-formed list.
type symbolResponse struct {
	Status  string   `json:"status"`
	Records *[][]any `json:"Records"`
}

// Record field offsets.
const (
	recToken = iota
	recSymbol
	recSegment
	recExchange
	recLotSize
	recName

	recMinFields = recExchange + 1
)

// NewDirectory creates a directory against the configured vendor endpoint.
func NewDirectory(cfg Config, logger logger.Interface) *Directory {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	return &Directory{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// ResolveSymbols fetches the symbol master and returns the instruments
// matching the configured segment and exchange. A malformed envelope fails
// the whole call; individual malformed records are dropped with a warning,
// since the master routinely carries partial rows for delisted instruments.
func (d *Directory) ResolveSymbols(ctx context.Context) ([]Instrument, error) {
	endpoint, err := url.Parse(d.cfg.RestURL)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.VendorFormatError)
	}
	query := endpoint.Query()
	query.Set("user", d.cfg.User)
	query.Set("password", d.cfg.Password)
	query.Set("segment", d.cfg.Segment)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.VendorStreamError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewTracer(fmt.Sprintf("symbol master returned status %d", resp.StatusCode)).
			WithCode(errors.VendorStreamError)
	}

	var payload symbolResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.VendorFormatError)
	}
	if !strings.EqualFold(payload.Status, "Success") {
		return nil, errors.NewTracer("symbol master rejected request: " + payload.Status).
			WithCode(errors.VendorFormatError)
	}
	if payload.Records == nil {
		return nil, errors.NewTracer("symbol master response has no record list").
			WithCode(errors.VendorFormatError)
	}

	records := *payload.Records
	instruments := make([]Instrument, 0, len(records))
	dropped := 0
	for _, row := range records {
		inst, ok := decodeRecord(row)
		if !ok {
			dropped++
			continue
		}
		if !strings.EqualFold(inst.Segment, d.cfg.Segment) {
			continue
		}
		if !strings.EqualFold(inst.Exchange, d.cfg.Exchange) {
			continue
		}
		instruments = append(instruments, inst)
	}

	if dropped > 0 {
		d.logger.Warn("dropped malformed symbol master records",
			logger.NewField("dropped", dropped),
			logger.NewField("kept", len(instruments)),
		)
	}
	d.logger.Info("resolved symbol universe",
		logger.NewField("instruments", len(instruments)),
		logger.NewField("segment", d.cfg.Segment),
		logger.NewField("exchange", d.cfg.Exchange),
	)

	return instruments, nil
}

func decodeRecord(row []any) (Instrument, bool) {
	if len(row) < recMinFields {
		return Instrument{}, false
	}
	token, ok := row[recToken].(float64)
	if !ok {
		return Instrument{}, false
	}
	symbol, ok := row[recSymbol].(string)
	if !ok || symbol == "" {
		return Instrument{}, false
	}
	segment, ok := row[recSegment].(string)
	if !ok {
		return Instrument{}, false
	}
	exchange, ok := row[recExchange].(string)
	if !ok {
		return Instrument{}, false
	}

	inst := Instrument{
		Token:    int64(token),
		Symbol:   symbol,
		Segment:  segment,
		Exchange: exchange,
	}
	if len(row) > recLotSize {
		if lot, ok := row[recLotSize].(float64); ok {
			inst.LotSize = int64(lot)
		}
	}
	if len(row) > recName {
		inst.Name, _ = row[recName].(string)
	}
	return inst, true
}

// SelectUniverse picks the subscription universe: instruments ordered by
// ascending token, truncated to limit. Token order is stable across vendor
// restarts, so the selection is deterministic run to run.
func SelectUniverse(instruments []Instrument, limit int) []string {
	sorted := append([]Instrument(nil), instruments...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Token < sorted[j].Token })

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	symbols := make([]string, 0, len(sorted))
	for _, inst := range sorted {
		symbols = append(symbols, inst.Symbol)
	}
	return symbols
}
