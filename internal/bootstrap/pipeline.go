package bootstrap

import (
	"context"

	"github.com/quantick/barpipe/internal/aggregator"
	"github.com/quantick/barpipe/internal/domain/market"
	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/internal/registry"
	"github.com/quantick/barpipe/internal/server"
	"github.com/quantick/barpipe/internal/stream"
	"github.com/quantick/barpipe/internal/symbols"
	"github.com/quantick/barpipe/pkg/interval"
)

// Pipeline holds the streaming components.
type Pipeline struct {
	Aggregator *aggregator.Aggregator
	Registry   *registry.Registry
	Directory  *symbols.Directory
	Sink       market.TickSink
}

// tickFanout feeds every priced tick into the aggregator and records the
// latest quote when the quote store is enabled. Priceless quote updates only
// touch the quote store.
type tickFanout struct {
	aggregator market.TickSink
	quotes     market.QuoteStore
}

func (f *tickFanout) ProcessTick(tick marketv1.Tick) {
	if tick.HasPrice() {
		f.aggregator.ProcessTick(tick)
	}
	if f.quotes != nil {
		_ = f.quotes.Record(context.Background(), tick)
	}
}

// registerPipeline registers the streaming pipeline.
func (b *Bootstrap) registerPipeline() {
	b.Pipeline.Aggregator = aggregator.New(
		aggregator.Config{Interval: interval.Minute},
		b.Usecase.BarUsecase,
		b.Publisher,
		b.Logger,
	)
	b.Pipeline.Registry = registry.New(b.Logger)
	b.Pipeline.Directory = symbols.NewDirectory(symbols.Config{
		RestURL:  b.Config.Vendor.RestURL,
		User:     b.Config.Vendor.User,
		Password: b.Config.Vendor.Password,
		Segment:  b.Config.Vendor.Segment,
		Exchange: b.Config.Vendor.Exchange,
	}, b.Logger)
	b.Pipeline.Sink = &tickFanout{
		aggregator: b.Pipeline.Aggregator,
		quotes:     b.Usecase.QuoteUsecase,
	}
}

// ClientFactory returns the factory the server uses to open one vendor
// session per subscriber. Every session feeds the shared sink.
func (b *Bootstrap) ClientFactory() server.ClientFactory {
	return func() server.VendorClient {
		return stream.NewClient(stream.Config{
			StreamURL:   b.Config.Vendor.StreamURL,
			User:        b.Config.Vendor.User,
			Password:    b.Config.Vendor.Password,
			BarInterval: b.Config.Vendor.BarInterval,
		}, b.Pipeline.Sink, b.Logger)
	}
}
