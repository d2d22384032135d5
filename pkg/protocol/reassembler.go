package protocol

// Reassembler turns an arbitrarily fragmented byte stream back into whole
// frame regions. TCP may deliver half a frame, three frames, or a frame and
// a half per read; Feed absorbs whatever arrived and yields only complete
// [header][payload] regions, in arrival order.
//
// A Reassembler is owned by exactly one session's read path and is not safe
// for concurrent use.
type Reassembler struct {
	buf      []byte
	maxFrame int
}

// NewReassembler creates a reassembler with the given frame-length ceiling.
// A non-positive ceiling selects DefaultMaxFrameSize.
func NewReassembler(maxFrame int) *Reassembler {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &Reassembler{maxFrame: maxFrame}
}

// Buffered returns the number of bytes held for a trailing partial frame.
func (r *Reassembler) Buffered() int {
	return len(r.buf)
}

// Feed appends newly arrived bytes and extracts every complete frame region
// now available. Each returned slice is the [header][payload] region of one
// frame, still enciphered if a session cipher is active; returned slices are
// freshly allocated and safe to retain.
//
// A declared length exceeding the ceiling fails with ErrOversizedFrame, and
// a declared length too small to hold a header ID fails with ErrShortFrame.
// Both mean stream framing can no longer be trusted: the caller must
// terminate the session rather than continue feeding.
func (r *Reassembler) Feed(chunk []byte) ([][]byte, error) {
	r.buf = append(r.buf, chunk...)

	var regions [][]byte
	for {
		if len(r.buf) < LengthPrefixSize {
			return regions, nil
		}
		length := int(r.buf[0])<<24 | int(r.buf[1])<<16 | int(r.buf[2])<<8 | int(r.buf[3])
		if length > r.maxFrame {
			return regions, ErrOversizedFrame
		}
		if length < HeaderSize {
			return regions, ErrShortFrame
		}
		if len(r.buf) < LengthPrefixSize+length {
			return regions, nil
		}

		region := make([]byte, length)
		copy(region, r.buf[LengthPrefixSize:LengthPrefixSize+length])
		regions = append(regions, region)

		// Shift the remainder down rather than re-slicing so the buffer
		// does not pin every chunk ever fed.
		rest := len(r.buf) - (LengthPrefixSize + length)
		copy(r.buf, r.buf[LengthPrefixSize+length:])
		r.buf = r.buf[:rest]
	}
}

// Reset discards any buffered partial frame.
func (r *Reassembler) Reset() {
	r.buf = r.buf[:0]
}
