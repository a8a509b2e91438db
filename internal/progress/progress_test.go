package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoardLifecycle(t *testing.T) {
	t.Parallel()

	board := NewBoard(3)
	require.Equal(t, 3, board.Size())
	require.Equal(t, []Marker{MarkerPending, MarkerPending, MarkerPending}, board.Markers())

	require.NoError(t, board.Activate(0))
	require.Equal(t, MarkerActive, board.Marker(0))

	require.NoError(t, board.Complete(0))
	require.NoError(t, board.Activate(1))
	require.NoError(t, board.Skip(1))

	completed, skipped, pending := board.Counts()
	require.Equal(t, 1, completed)
	require.Equal(t, 1, skipped)
	require.Equal(t, 1, pending)
}

func TestBoardSingleActive(t *testing.T) {
	t.Parallel()

	board := NewBoard(3)
	require.NoError(t, board.Activate(0))
	require.NoError(t, board.Activate(2))

	require.Equal(t, MarkerPending, board.Marker(0), "old active slot demotes to pending")
	require.Equal(t, MarkerActive, board.Marker(2))

	active := 0
	for _, m := range board.Markers() {
		if m == MarkerActive {
			active++
		}
	}
	require.Equal(t, 1, active)
}

func TestBoardTerminalMarkersNeverRegress(t *testing.T) {
	t.Parallel()

	board := NewBoard(2)
	require.NoError(t, board.Activate(0))
	require.NoError(t, board.Complete(0))

	require.Error(t, board.Activate(0))
	require.Error(t, board.Skip(0))
	require.NoError(t, board.Complete(0), "re-finishing with the same marker is a no-op")
	require.Equal(t, MarkerCompleted, board.Marker(0))

	require.NoError(t, board.Skip(1))
	require.Error(t, board.Complete(1))
	require.Equal(t, MarkerSkipped, board.Marker(1))
}

func TestBoardOutOfRange(t *testing.T) {
	t.Parallel()

	board := NewBoard(1)
	require.Error(t, board.Activate(-1))
	require.Error(t, board.Complete(1))
	require.Equal(t, MarkerPending, board.Marker(99))
}

func TestMarkerString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pending", MarkerPending.String())
	require.Equal(t, "active", MarkerActive.String())
	require.Equal(t, "completed", MarkerCompleted.String())
	require.Equal(t, "skipped", MarkerSkipped.String())
}
