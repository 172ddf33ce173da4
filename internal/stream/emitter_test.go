package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/stream"
)

func TestFeedEmitsNothingBeforeStartMarker(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 100})
	events := e.Feed("Let me think about this.")
	assert.Empty(t, events)
	assert.Equal(t, stream.PhaseSearching, e.Phase())
}

func TestFeedTransitionsToInAnswerAndBuffersUntilChunkMax(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 10, MaxEvents: 10})
	events := e.Feed("preamble ANSWER_START")
	assert.Empty(t, events)
	assert.Equal(t, stream.PhaseInAnswer, e.Phase())

	events = e.Feed("the retriever fuses channels ")
	require.Len(t, events, 1)
	assert.Equal(t, stream.PhaseInAnswer, events[0].Phase)
	assert.NotEmpty(t, events[0].Text)
}

func TestFeedHandlesMarkerStraddlingChunkBoundary(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 100, MaxEvents: 10})

	events := e.Feed("preamble ANSWER_ST")
	assert.Empty(t, events)
	assert.Equal(t, stream.PhaseSearching, e.Phase())

	events = e.Feed("ART the retriever fuses channels ANSWER_END")
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, stream.PhaseDone, last.Phase)
	assert.Equal(t, stream.PhaseDone, e.Phase())

	var answerText string
	for _, ev := range events {
		answerText += ev.Text
	}
	assert.Contains(t, answerText, "the retriever fuses channels")
}

func TestFeedHandlesEndMarkerStraddlingChunkBoundary(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 1000, MaxEvents: 10})

	events := e.Feed("ANSWER_START the answer body ANSWER_E")
	assert.Empty(t, events)
	assert.Equal(t, stream.PhaseInAnswer, e.Phase())

	events = e.Feed("ND")
	require.NotEmpty(t, events)
	assert.Equal(t, stream.PhaseDone, e.Phase())

	var answerText string
	for _, ev := range events {
		answerText += ev.Text
	}
	assert.Equal(t, " the answer body ", answerText)
}

func TestTickFlushesPartialBufferBelowChunkMax(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 1000, MaxEvents: 10})
	e.Feed("ANSWER_START short")

	// Nothing buffered yet: the whole chunk is held back as a
	// marker-straddle safety margin since it's shorter than the margin.
	assert.Empty(t, e.Tick())

	events := e.Feed(" fragment")
	assert.Empty(t, events)

	ticked := e.Tick()
	require.Len(t, ticked, 1)
	assert.Equal(t, " short", ticked[0].Text)

	final := e.Close()
	require.NotEmpty(t, final)
	assert.Equal(t, " fragment", final[0].Text)
}

func TestMaxEventsCapsOutput(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 1, MaxEvents: 1})
	e.Feed("ANSWER_START")

	// Longer than the ANSWER_END marker-straddle margin so some of it
	// actually reaches the buffer and triggers a chunk_max_chars flush.
	first := e.Feed("abcdefghij")
	require.Len(t, first, 1)

	second := e.Feed("klmnopqrst")
	assert.Empty(t, second)
}

func TestCloseWithoutMarkerEmitsFallbackOnce(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 100, MaxEvents: 10})
	e.Feed("the model never produced a marker")

	events := e.Close()
	require.Len(t, events, 1)
	assert.Equal(t, stream.PhaseDone, events[0].Phase)
	assert.Contains(t, events[0].Text, "never produced a marker")

	assert.Empty(t, e.Close())
}

func TestCloseAfterDoneIsNoop(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 100, MaxEvents: 10})
	e.Feed("ANSWER_START body ANSWER_END")
	assert.Equal(t, stream.PhaseDone, e.Phase())

	assert.Empty(t, e.Close())
}

func TestFeedAfterCloseIsIgnored(t *testing.T) {
	e := stream.New(stream.Config{ChunkMaxChars: 100, MaxEvents: 10})
	e.Close()
	assert.Empty(t, e.Feed("ANSWER_START anything ANSWER_END"))
}
