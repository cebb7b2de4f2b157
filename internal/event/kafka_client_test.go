package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaClientRequiresHostAndTopic(t *testing.T) {
	_, err := NewKafkaClient("", "9092", "backoffice", "backoffice")
	assert.Error(t, err)

	_, err = NewKafkaClient("127.0.0.1", "9092", "", "backoffice")
	assert.Error(t, err)
}

func TestReadMessageHonorsContext(t *testing.T) {
	client, err := NewKafkaClient("127.0.0.1", "1", "backoffice", "backoffice")
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = client.ReadMessage(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKafkaClientIsPublisher(t *testing.T) {
	var _ Publisher = (*KafkaClient)(nil)
}
