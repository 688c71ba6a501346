package label

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/richtext"
)

var (
	onCall = layout.Point{X: 30, Y: 110}
	onUs   = layout.Point{X: 90, Y: 110}
)

func TestTapActivatesLink(t *testing.T) {
	rec := &pressRecorder{}
	l := callUs(t, WithDelegate(rec))

	assert.Equal(t, Handled, l.TouchesBegan(onCall))
	assert.Equal(t, PressCandidate, l.State())
	assert.Equal(t, Handled, l.TouchesEnded(onCall))
	assert.Equal(t, Idle, l.State())

	require.Len(t, rec.links, 1)
	assert.Equal(t, "tel://909001", rec.links[0].String())
	assert.Equal(t, onCall, rec.points[0])
}

func TestLongPressThenRelease(t *testing.T) {
	rec := &pressRecorder{}
	l := callUs(t, WithDelegate(rec))

	l.TouchesBegan(onCall)
	assert.Equal(t, Handled, l.PressRecognized(onCall))
	assert.Equal(t, LinkArmed, l.State())

	inside := layout.Point{X: 12, Y: 105}
	assert.Equal(t, Handled, l.TouchesMoved(inside))
	assert.Equal(t, LinkArmed, l.State())
	assert.Equal(t, Handled, l.TouchesEnded(inside))
	require.Len(t, rec.links, 1)
	assert.Equal(t, inside, rec.points[0])
}

func TestDragCancelsPress(t *testing.T) {
	rec := &pressRecorder{}
	l := callUs(t, WithDelegate(rec))

	require.Equal(t, Handled, l.TouchesBegan(onCall))
	assert.Equal(t, Forward, l.TouchesMoved(onUs))
	assert.Equal(t, Idle, l.State())

	// 回到链接上也不会重新激活
	assert.Equal(t, Forward, l.TouchesMoved(onCall))
	assert.Equal(t, Forward, l.TouchesEnded(onCall))
	assert.Empty(t, rec.links)
}

func TestDragAfterArmCancels(t *testing.T) {
	rec := &pressRecorder{}
	l := callUs(t, WithDelegate(rec))

	l.TouchesBegan(onCall)
	l.PressRecognized(onCall)
	assert.Equal(t, Forward, l.TouchesMoved(layout.Point{X: 30, Y: 140}))
	assert.Equal(t, Forward, l.TouchesEnded(onCall))
	assert.Empty(t, rec.links)
}

func TestPressOffLinkIsForwarded(t *testing.T) {
	rec := &pressRecorder{}
	l := callUs(t, WithDelegate(rec))

	assert.Equal(t, Forward, l.TouchesBegan(onUs))
	assert.Equal(t, Idle, l.State())
	assert.Equal(t, Forward, l.TouchesMoved(onCall))
	assert.Equal(t, Forward, l.TouchesEnded(onCall))
	assert.Empty(t, rec.links)
}

func TestReleaseOffLinkWithoutLongPress(t *testing.T) {
	rec := &pressRecorder{}
	l := callUs(t, WithDelegate(rec))

	l.TouchesBegan(onCall)
	assert.Equal(t, Forward, l.TouchesEnded(onUs))
	assert.Empty(t, rec.links)
}

func TestCancelledTouchEmitsNothing(t *testing.T) {
	rec := &pressRecorder{}
	l := callUs(t, WithDelegate(rec))

	l.TouchesBegan(onCall)
	l.PressRecognized(onCall)
	l.TouchesCancelled()
	assert.Equal(t, Idle, l.State())
	assert.Equal(t, Forward, l.TouchesEnded(onCall))
	assert.Empty(t, rec.links)
}

func TestInteractionDisabledForwardsEverything(t *testing.T) {
	rec := &pressRecorder{}
	l := callUs(t, WithDelegate(rec))
	l.SetUserInteractionEnabled(false)

	assert.False(t, l.ShouldHandle(onCall))
	assert.Equal(t, Forward, l.TouchesBegan(onCall))
	assert.Equal(t, Forward, l.TouchesEnded(onCall))
	assert.Empty(t, rec.links)
}

func TestTextReassignmentResetsTouch(t *testing.T) {
	var pressed int
	l := callUs(t, WithDelegate(DelegateFunc(func(_ *url.URL, _ layout.Point) { pressed++ })))

	l.TouchesBegan(onCall)
	l.PressRecognized(onCall)
	l.SetAttributedText(richtext.New("call us", nil))
	assert.Equal(t, Idle, l.State())
	assert.Equal(t, Forward, l.TouchesEnded(onCall))
	assert.Zero(t, pressed)

	l.SetAttributedText(richtext.New("call", richtext.Attributes{richtext.ManagedLink: "tel://1"}))
	l.Layout()
	l.TouchesBegan(onCall)
	l.TouchesEnded(onCall)
	assert.Equal(t, 1, pressed)
}

func TestTouchStringers(t *testing.T) {
	assert.Equal(t, "link-armed", LinkArmed.String())
	assert.Equal(t, "handled", Handled.String())
	assert.Equal(t, "forward", Forward.String())
}
