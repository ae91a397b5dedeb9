//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("flood-analytics-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = ctr.Terminate(context.Background())
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

// gaugeRecords builds n readings per series at 15 minute steps. Water level
// is reported in feet and rises with rainfall reported in inches.
func gaugeRecords(n int) []domain.RawReadingRecord {
	base := time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)
	records := make([]domain.RawReadingRecord, 0, 2*n)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * 15 * time.Minute).Format(time.RFC3339)
		rain := 0.05 * float64(i%4+1)
		stage := 3.0 + 0.4*float64(i) + 2*rain
		records = append(records,
			domain.RawReadingRecord{
				SiteID:    "01646500",
				SiteName:  "Potomac River near Little Falls",
				Variable:  "stage",
				Value:     strconv.FormatFloat(stage, 'f', 3, 64),
				Unit:      "ft",
				Timestamp: ts,
				Quality:   "good",
			},
			domain.RawReadingRecord{
				SiteID:    "R-12",
				SiteName:  "Great Falls Rain Gauge",
				Variable:  "precip",
				Value:     strconv.FormatFloat(rain, 'f', 3, 64),
				Unit:      "in",
				Timestamp: ts,
				Quality:   "good",
			},
		)
	}
	return records
}

func newSinkConsumer(broker, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
}
