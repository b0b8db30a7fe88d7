package masterdata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

func TestStateLifecycleBroadcast(t *testing.T) {
	t.Parallel()

	state := NewState[domain.Unit]()

	var seen []Snapshot[domain.Unit]
	unsubscribe := state.Subscribe(func(snap Snapshot[domain.Unit]) {
		seen = append(seen, snap)
	})

	state.begin()
	state.setItems([]domain.Unit{{ServerID: 1, Code: "PCS"}})
	state.finish("")

	require.Len(t, seen, 3)
	require.True(t, seen[0].Loading)
	require.Len(t, seen[1].Items, 1)
	require.False(t, seen[2].Loading)
	require.Empty(t, seen[2].ErrorMessage)

	unsubscribe()
	state.begin()
	state.finish("boom")
	require.Len(t, seen, 3, "unsubscribed handler must not fire")

	snap := state.Snapshot()
	require.Equal(t, "boom", snap.ErrorMessage)
	require.False(t, snap.Loading)
}

func TestStateBeginClearsPreviousError(t *testing.T) {
	t.Parallel()

	state := NewState[domain.Unit]()
	state.begin()
	state.finish("previous failure")
	require.Equal(t, "previous failure", state.Snapshot().ErrorMessage)

	state.begin()
	snap := state.Snapshot()
	require.True(t, snap.Loading)
	require.Empty(t, snap.ErrorMessage)
}

func TestStateSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	state := NewState[domain.Unit]()
	state.setItems([]domain.Unit{{ServerID: 1, Code: "PCS", Name: "штука"}})

	snap := state.Snapshot()
	snap.Items[0].Name = "изменено снаружи"

	require.Equal(t, "штука", state.Snapshot().Items[0].Name)
}
