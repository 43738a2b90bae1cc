package memory_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fsbdata/disclosure-crawler/internal/publisher/memory"
)

func TestPublishRecordsMessages(t *testing.T) {
	t.Parallel()

	pub := memory.New()

	id, err := pub.Publish(context.Background(), "runs", map[string]any{"run_id": "r1"})
	require.NoError(t, err)
	require.Equal(t, "mem-1", id)

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "runs", msgs[0].Topic)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msgs[0].Data, &payload))
	require.Equal(t, "r1", payload["run_id"])
}

func TestPublishRejectsUnmarshalablePayload(t *testing.T) {
	t.Parallel()

	pub := memory.New()
	_, err := pub.Publish(context.Background(), "runs", func() {})
	require.Error(t, err)
	require.Empty(t, pub.Messages())
}
