package whatsapp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhook_Messages(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [
						{"from": "254712345678", "id": "wamid.1", "text": {"body": "NEXT"}},
						{"from": "254110000000", "id": "wamid.2"}
					]
				}
			}]
		}]
	}`)

	msgs, statuses, err := ParseWebhook(raw)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Empty(t, statuses)

	assert.Equal(t, "254712345678", msgs[0].From)
	assert.Equal(t, "NEXT", msgs[0].Body())
	// non-text message: body degrades to empty, no panic
	assert.Equal(t, "", msgs[1].Body())
}

func TestParseWebhook_Statuses(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"entry": [{
			"changes": [{
				"value": {
					"statuses": [
						{"recipient_id": "254712345678", "status": "read", "timestamp": "1756500000"},
						{"recipient_id": "254712345678", "status": "failed"}
					]
				}
			}]
		}]
	}`)

	msgs, statuses, err := ParseWebhook(raw)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	require.Len(t, statuses, 2)

	assert.True(t, statuses[0].Delivered())
	assert.Equal(t, time.Unix(1756500000, 0), statuses[0].Time())
	assert.False(t, statuses[1].Delivered())
	assert.True(t, statuses[1].Time().IsZero())
}

func TestParseWebhook_EmptyEnvelope(t *testing.T) {
	t.Parallel()

	msgs, statuses, err := ParseWebhook([]byte(`{"entry": []}`))
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Empty(t, statuses)
}

func TestParseWebhook_Malformed(t *testing.T) {
	t.Parallel()

	_, _, err := ParseWebhook([]byte(`{not json`))
	require.Error(t, err)
}
