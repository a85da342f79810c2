package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/segmentio/kafka-go"

	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
)

// bartail tails the finalized-bar topic and prints each bar, for verifying
// the publisher end to end without a downstream consumer.
func main() {
	var (
		brokers = flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
		topic   = flag.String("topic", "market.bars", "bar topic to tail")
		group   = flag.String("group", "", "consumer group (empty tails from the latest offset)")
		symbol  = flag.String("symbol", "", "only print bars for this symbol")
	)
	flag.Parse()

	cfg := kafka.ReaderConfig{
		Brokers: strings.Split(*brokers, ","),
		Topic:   *topic,
	}
	if *group != "" {
		cfg.GroupID = *group
	} else {
		cfg.StartOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(cfg)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("tailing %s on %s", *topic, *brokers)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("read failed: %v", err)
			os.Exit(1)
		}

		var bar marketv1.Bar
		if err := json.Unmarshal(msg.Value, &bar); err != nil {
			log.Printf("skipping undecodable message at offset %d: %v", msg.Offset, err)
			continue
		}
		if *symbol != "" && bar.Symbol != *symbol {
			continue
		}

		fmt.Printf("%s %s %s vol=%d trades=%d vwap=%.2f\n",
			bar.BucketStart.Format("2006-01-02 15:04"),
			bar.Symbol,
			bar.OHLCString(),
			bar.Volume,
			bar.TradeCount,
			bar.VWAP,
		)
	}
}
