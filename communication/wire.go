package communication

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Remote evaluation framing. All integers and floats are big-endian.
//
//	client: flag(1) [state: len(4) bytes] [depth(4)] [move: len(4) bytes]
//	server: score(8)
//
// The client repeats the request with flag 1 for every job and sends a single
// flag 0 before closing.

// MaxFrameSize bounds a state or move frame.
const MaxFrameSize = 16 << 20

func WriteFlag(w io.Writer, more bool) error {
	b := [1]byte{0}
	if more {
		b[0] = 1
	}
	_, err := w.Write(b[:])
	return err
}

func ReadFlag(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid continuation flag %#x", b[0])
	}
}

func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit of %d", len(data), MaxFrameSize)
	}
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	if _, err := w.Write(size[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func ReadFrame(r io.Reader) ([]byte, error) {
	var size [4]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(size[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit of %d", n, MaxFrameSize)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func WriteDepth(w io.Writer, depth int) error {
	if depth < 0 || depth > math.MaxInt32 {
		return fmt.Errorf("depth %d out of range", depth)
	}
	return binary.Write(w, binary.BigEndian, int32(depth))
}

func ReadDepth(r io.Reader) (int, error) {
	var depth int32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return 0, err
	}
	if depth < 0 {
		return 0, fmt.Errorf("negative depth %d", depth)
	}
	return int(depth), nil
}

func WriteScore(w io.Writer, score float64) error {
	return binary.Write(w, binary.BigEndian, score)
}

func ReadScore(r io.Reader) (float64, error) {
	var score float64
	if err := binary.Read(r, binary.BigEndian, &score); err != nil {
		return 0, err
	}
	return score, nil
}
