package communication

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJobFraming(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFlag(&buf, true))
	require.NoError(t, WriteFrame(&buf, []byte("state")))
	require.NoError(t, WriteDepth(&buf, 9))
	require.NoError(t, WriteFrame(&buf, []byte("3")))
	require.NoError(t, WriteFlag(&buf, false))

	require.Equal(t, []byte{
		1,
		0, 0, 0, 5, 's', 't', 'a', 't', 'e',
		0, 0, 0, 9,
		0, 0, 0, 1, '3',
		0,
	}, buf.Bytes(), "Integers should be big-endian")

	more, err := ReadFlag(&buf)
	require.NoError(t, err)
	require.True(t, more)
	state, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, []byte("state"), state)
	depth, err := ReadDepth(&buf)
	require.NoError(t, err)
	require.Equal(t, 9, depth)
	move, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, []byte("3"), move)
	more, err = ReadFlag(&buf)
	require.NoError(t, err)
	require.False(t, more)
}

func TestScoreFraming(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScore(&buf, -0.25))
	require.Equal(t, 8, buf.Len())
	require.Equal(t, math.Float64bits(-0.25), binary.BigEndian.Uint64(buf.Bytes()))

	score, err := ReadScore(&buf)
	require.NoError(t, err)
	require.Equal(t, -0.25, score)
}

func TestFramingErrors(t *testing.T) {
	_, err := ReadFlag(bytes.NewReader([]byte{2}))
	require.Error(t, err, "Only 0 and 1 are flags")

	_, err = ReadFrame(bytes.NewReader([]byte{0xff, 0, 0, 0}))
	require.Error(t, err, "Oversized frames should be rejected before allocating")

	_, err = ReadFrame(bytes.NewReader([]byte{0, 0, 0, 4, 'a'}))
	require.Error(t, err, "Truncated frames should fail")

	require.Error(t, WriteFrame(&bytes.Buffer{}, make([]byte, MaxFrameSize+1)))
	require.Error(t, WriteDepth(&bytes.Buffer{}, -1))

	_, err = ReadDepth(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
	require.Error(t, err, "Negative depths should be rejected")
}
