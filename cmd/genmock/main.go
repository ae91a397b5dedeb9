// Command genmock generates synthetic flood gauge readings for local
// development: a rain gauge and a river gauge through a storm, with the river
// responding to rainfall after a lag. Readings are written as collector JSON
// and can also be published to the source Kafka topic. It runs every record
// through the domain transform so the printed statistics match what the
// service will compute.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/gauge_readings.json
//	go run ./cmd/genmock -hours 48 -brokers localhost:9092 -topic raw-gauge-readings
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	"github.com/couchcryptid/flood-data-analytics/internal/stats"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

var baseDate = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

const (
	riverSite = "01646500"
	rainSite  = "R-12"
	step      = 15 * time.Minute
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the raw readings JSON fixture")
	hours := flag.Int("hours", 24, "hours of readings to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	gapRate := flag.Float64("gap-rate", 0.03, "fraction of readings reported as missing")
	brokers := flag.String("brokers", "", "comma-separated Kafka brokers to publish to (optional)")
	topic := flag.String("topic", "raw-gauge-readings", "Kafka topic to publish to")
	flag.Parse()

	if *out == "" && *brokers == "" {
		flag.Usage()
		return fmt.Errorf("nothing to do: set -out and/or -brokers")
	}
	if *hours <= 0 {
		return fmt.Errorf("-hours must be positive")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate.Add(time.Duration(*hours) * time.Hour)))
	defer domain.SetClock(nil)

	records := generate(*hours, *gapRate, rand.New(rand.NewPCG(*seed, *seed)))
	log.Printf("generated %d records", len(records))

	if *out != "" {
		if err := writeJSON(*out, records); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *out)
	}

	if *brokers != "" {
		if err := publish(context.Background(), sharedcfg.ParseBrokers(*brokers), *topic, records); err != nil {
			return fmt.Errorf("publishing: %w", err)
		}
		log.Printf("published %d records to %s", len(records), *topic)
	}

	return printStats(records)
}

// generate builds a rain pulse centred a third of the way through the period
// and a river stage that follows it with a two hour lag.
func generate(hours int, gapRate float64, rng *rand.Rand) []domain.RawReadingRecord {
	n := hours * int(time.Hour/step)
	peak := float64(n) / 3
	lag := float64(2 * time.Hour / step)

	records := make([]domain.RawReadingRecord, 0, 2*n)
	for i := 0; i < n; i++ {
		ts := baseDate.Add(time.Duration(i) * step).Format(time.RFC3339)

		// Rainfall in inches per interval.
		rain := 0.4*math.Exp(-math.Pow((float64(i)-peak)/6, 2)) + 0.01*rng.Float64()
		// Stage in feet.
		stage := 4 + 6*math.Exp(-math.Pow((float64(i)-peak-lag)/12, 2)) + 0.05*rng.NormFloat64()

		records = append(records,
			record(rainSite, "Great Falls Rain Gauge", "precip", rain, "in", ts, 38.9985, -77.2528, gapRate, rng),
			record(riverSite, "Potomac River near Little Falls", "stage", stage, "ft", ts, 38.9497, -77.1275, gapRate, rng),
		)
	}
	return records
}

func record(site, name, variable string, value float64, unit, ts string, lat, lon, gapRate float64, rng *rand.Rand) domain.RawReadingRecord {
	rec := domain.RawReadingRecord{
		SiteID:    site,
		SiteName:  name,
		Variable:  variable,
		Value:     strconv.FormatFloat(value, 'f', 3, 64),
		Unit:      unit,
		Timestamp: ts,
		Lat:       strconv.FormatFloat(lat, 'f', 4, 64),
		Lon:       strconv.FormatFloat(lon, 'f', 4, 64),
		Quality:   "good",
	}
	switch r := rng.Float64(); {
	case r < gapRate/2:
		rec.Value = "-9999"
	case r < gapRate:
		rec.Value = "NA"
	case r < gapRate*1.5:
		rec.Quality = "suspect"
	}
	return rec
}

func publish(ctx context.Context, brokers []string, topic string, records []domain.RawReadingRecord) error {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	defer w.Close()

	msgs := make([]kafkago.Message, len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		msgs[i] = kafkago.Message{Key: []byte(rec.SiteID), Value: data}
	}
	return w.WriteMessages(ctx, msgs...)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printStats runs the records through the domain transform and prints the
// figures tests and dashboards should expect.
func printStats(records []domain.RawReadingRecord) error {
	bySeries := map[domain.SeriesKey][]domain.Reading{}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		r, err := domain.ParseRawReading(domain.RawEvent{Value: data, Timestamp: baseDate})
		if err != nil {
			return fmt.Errorf("parse generated record: %w", err)
		}
		r, err = domain.NormalizeReading(r)
		if err != nil {
			return fmt.Errorf("normalize generated record: %w", err)
		}
		bySeries[r.Key()] = append(bySeries[r.Key()], r)
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	rain := domain.SeriesKey{SiteID: rainSite, Variable: domain.VariableRainfall}
	stage := domain.SeriesKey{SiteID: riverSite, Variable: domain.VariableWaterLevel}
	for _, key := range []domain.SeriesKey{rain, stage} {
		s, ok := domain.NewSeriesSummary(key, bySeries[key])
		if !ok {
			continue
		}
		fmt.Printf("%s (%s): n=%d mean=%s std=%s min=%s p50=%s max=%s\n",
			key, s.Unit, s.Summary.Count, s.Formatted["mean"], s.Formatted["std"],
			s.Formatted["min"], s.Formatted["p50"], s.Formatted["max"])
	}

	x, y := domain.Align(bySeries[rain], bySeries[stage], step).Complete()
	for _, m := range []stats.Method{stats.MethodPearson, stats.MethodSpearman} {
		c, err := stats.Correlate(m, x, y)
		if err != nil {
			fmt.Printf("%s: %v\n", m, err)
			continue
		}
		fmt.Printf("%s rain vs stage: r=%s p=%s n=%d\n", m, stats.Format(c.Coefficient), stats.Format(c.PValue), c.N)
	}
	return nil
}
