package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fars-data/internal/config"
	"github.com/couchcryptid/fars-data/internal/domain"
	"github.com/couchcryptid/fars-data/internal/observability"
)

func intp(n int) *int { return &n }

func TestSummaryMessages(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	s := domain.SummaryTable{
		Years: []int{2013, 2015},
		Rows: []domain.MonthCounts{
			{Month: 1, Counts: []*int{intp(12), intp(14)}},
			{Month: 12, Counts: []*int{intp(12), nil}},
		},
		GeneratedAt: now,
	}

	msgs, err := summaryMessages(s)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, []byte("1"), msgs[0].Key)
	assert.JSONEq(t, `{"month":1,"counts":{"2013":12,"2015":14}}`, string(msgs[0].Value))
	assert.Equal(t, []byte("12"), msgs[1].Key)
	assert.JSONEq(t, `{"month":12,"counts":{"2013":12,"2015":null}}`, string(msgs[1].Value))

	require.Len(t, msgs[0].Headers, 2)
	assert.Equal(t, "years", msgs[0].Headers[0].Key)
	assert.Equal(t, []byte("2013,2015"), msgs[0].Headers[0].Value)
	assert.Equal(t, "generated_at", msgs[0].Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msgs[0].Headers[1].Value)
}

func TestSummaryMessages_NoYears(t *testing.T) {
	s := domain.SummaryTable{Rows: []domain.MonthCounts{{Month: 3}}}

	msgs, err := summaryMessages(s)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `{"month":3,"counts":{}}`, string(msgs[0].Value))
	assert.Empty(t, msgs[0].Headers[0].Value)
}

func TestNewWriter_UsesSummaryTopic(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:      []string{"localhost:9092"},
		KafkaSummaryTopic: "fars-test",
		LogLevel:          "error",
		LogFormat:         "text",
	}
	w := NewWriter(cfg, observability.NewCLILogger(cfg))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "fars-test", w.writer.Topic)
	assert.Equal(t, "localhost:9092", w.writer.Addr.String())
}
