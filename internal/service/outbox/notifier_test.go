package outbox

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

func TestNotifier_SendEnqueuesMessage(t *testing.T) {
	t.Parallel()

	repo := &stubOutboxRepo{}
	notifier := NewNotifier(repo, nil)

	refs := []domain.ChangeRef{{Table: "customers", RecordID: 7}}
	err := notifier.Send([]int64{3, 5}, refs, "customer updated")
	require.NoError(t, err)
	require.Len(t, repo.enqueued, 1)

	msg := repo.enqueued[0]
	require.Equal(t, "notification", msg.AggregateType)
	require.Equal(t, "customers:7", msg.AggregateID)
	require.Equal(t, notificationEventType, msg.EventType)
	require.NotEmpty(t, msg.ID)

	var payload domain.Notification
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	require.Equal(t, msg.ID, payload.ID)
	require.Equal(t, []int64{3, 5}, payload.Recipients)
	require.Equal(t, refs, payload.Refs)
	require.Equal(t, "customer updated", payload.Message)
	require.False(t, payload.CreatedAt.IsZero())
}

func TestNotifier_SendEmptyAudienceIsNoop(t *testing.T) {
	t.Parallel()

	repo := &stubOutboxRepo{}
	notifier := NewNotifier(repo, nil)

	require.NoError(t, notifier.Send(nil, nil, "nobody to tell"))
	require.Empty(t, repo.enqueued)
}

func TestNotifier_SendRepoError(t *testing.T) {
	t.Parallel()

	repo := &stubOutboxRepo{enqueueErr: errors.New("storage down")}
	notifier := NewNotifier(repo, nil)

	err := notifier.Send([]int64{3}, nil, "unit updated")
	require.Error(t, err)
}

func TestNotifier_AggregateIDWithoutRefs(t *testing.T) {
	t.Parallel()

	repo := &stubOutboxRepo{}
	notifier := NewNotifier(repo, nil)

	require.NoError(t, notifier.Send([]int64{3}, nil, "unit updated"))
	require.Len(t, repo.enqueued, 1)
	// Без ссылок ключом агрегата служит id уведомления.
	require.Equal(t, repo.enqueued[0].ID, repo.enqueued[0].AggregateID)
}
