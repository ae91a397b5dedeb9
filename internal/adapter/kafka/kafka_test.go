package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	"github.com/couchcryptid/flood-data-analytics/internal/stats"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves queued messages, then blocks until the context ends.
type fakeFetcher struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	committed []kafkago.Message
	err       error
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if f.err != nil {
		err := f.err
		f.mu.Unlock()
		return kafkago.Message{}, err
	}
	if len(f.msgs) > 0 {
		msg := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeFetcher) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeFetcher) Close() error { return nil }

type fakeWriter struct {
	written []kafkago.Message
	err     error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func messages(n int) []kafkago.Message {
	out := make([]kafkago.Message, n)
	for i := range out {
		out[i] = kafkago.Message{Topic: "raw-gauge-readings", Offset: int64(i), Value: []byte(`{}`)}
	}
	return out
}

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("01646500"),
		Value:     []byte(`{"site_id":"01646500"}`),
		Topic:     "raw-gauge-readings",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("usgs")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("01646500"), raw.Key)
	assert.JSONEq(t, `{"site_id":"01646500"}`, string(raw.Value))
	assert.Equal(t, "raw-gauge-readings", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "usgs", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestReader_ExtractBatch_FillsToBatchSize(t *testing.T) {
	f := &fakeFetcher{msgs: messages(5)}
	r := &Reader{reader: f, flushInterval: time.Second, logger: discardLogger()}

	batch, err := r.ExtractBatch(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, int64(2), batch[2].Offset)

	require.NoError(t, batch[1].Commit(context.Background()))
	require.Len(t, f.committed, 1)
	assert.Equal(t, int64(1), f.committed[0].Offset)
}

func TestReader_ExtractBatch_FlushesOnInterval(t *testing.T) {
	f := &fakeFetcher{msgs: messages(2)}
	r := &Reader{reader: f, flushInterval: 50 * time.Millisecond, logger: discardLogger()}

	start := time.Now()
	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReader_ExtractBatch_FirstFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("broker down")}
	r := &Reader{reader: f, flushInterval: time.Second, logger: discardLogger()}

	_, err := r.ExtractBatch(context.Background(), 10)
	require.EqualError(t, err, "broker down")
}

func TestReader_ExtractBatch_Cancelled(t *testing.T) {
	r := &Reader{reader: &fakeFetcher{}, flushInterval: time.Second, logger: discardLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ExtractBatch(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
}

func testSummary() domain.SeriesSummary {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	summary := stats.Summary{Count: 4, Mean: 1.25, Std: 0.5, Min: 0.5, P25: 1, P50: 1.25, P75: 1.5, Max: 2}
	return domain.SeriesSummary{
		Series:      domain.SeriesKey{SiteID: "01646500", Variable: domain.VariableWaterLevel},
		Unit:        "m",
		WindowStart: now.Add(-time.Hour),
		WindowEnd:   now,
		Summary:     summary,
		Formatted:   domain.FormatSummary(summary),
		GeneratedAt: now,
	}
}

func TestSerializeToMessage(t *testing.T) {
	s := testSummary()

	msg, err := serializeToMessage(s)
	require.NoError(t, err)

	assert.Equal(t, []byte("01646500:water_level"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "series", msg.Headers[0].Key)
	assert.Equal(t, []byte("01646500:water_level"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[1].Value)

	var decoded domain.SeriesSummary
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, s.Series, decoded.Series)
	assert.Equal(t, "1.2500", decoded.Formatted["mean"])
}

func TestWriter_PublishSummaries(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: discardLogger()}

	require.NoError(t, w.PublishSummaries(context.Background(), nil))
	assert.Empty(t, fw.written)

	require.NoError(t, w.PublishSummaries(context.Background(), []domain.SeriesSummary{testSummary(), testSummary()}))
	assert.Len(t, fw.written, 2)

	fw.err = errors.New("leader not available")
	err := w.PublishSummaries(context.Background(), []domain.SeriesSummary{testSummary()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
