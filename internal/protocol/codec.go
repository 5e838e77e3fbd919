package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ErrTruncated wraps any short read/write on the wire, mapped by
// callers to a transport-failure abort (spec §7).
type ErrTruncated struct {
	Op  string
	Err error
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("protocol: truncated %s: %v", e.Op, e.Err)
}

func (e *ErrTruncated) Unwrap() error { return e.Err }

// WriteState writes the 1-byte transition header.
func WriteState(w io.Writer, s State) error {
	if _, err := w.Write([]byte{byte(s)}); err != nil {
		return &ErrTruncated{Op: "state", Err: err}
	}
	return nil
}

// ReadState reads the 1-byte transition header.
func ReadState(r io.Reader) (State, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, &ErrTruncated{Op: "state", Err: err}
	}
	return State(buf[0]), nil
}

func writeFixed(w io.Writer, op string, v any) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return &ErrTruncated{Op: op, Err: err}
	}
	return nil
}

func readFixed(r io.Reader, op string, v any) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return &ErrTruncated{Op: op, Err: err}
	}
	return nil
}

func WriteRules(w io.Writer, p RulesPayload) error { return writeFixed(w, "rules", &p) }
func ReadRules(r io.Reader) (RulesPayload, error) {
	var p RulesPayload
	err := readFixed(r, "rules", &p)
	return p, err
}

func WriteName(w io.Writer, p NamePayload) error { return writeFixed(w, "name", &p) }
func ReadName(r io.Reader) (NamePayload, error) {
	var p NamePayload
	err := readFixed(r, "name", &p)
	return p, err
}

func WriteAckedNames(w io.Writer, p AckedNamesPayload) error { return writeFixed(w, "acked-names", &p) }
func ReadAckedNames(r io.Reader) (AckedNamesPayload, error) {
	var p AckedNamesPayload
	err := readFixed(r, "acked-names", &p)
	return p, err
}

func WriteGuess(w io.Writer, p GuessPayload) error { return writeFixed(w, "guess", &p) }
func ReadGuess(r io.Reader) (GuessPayload, error) {
	var p GuessPayload
	err := readFixed(r, "guess", &p)
	return p, err
}

func WriteFeedback(w io.Writer, p FeedbackPayload) error { return writeFixed(w, "feedback", &p) }
func ReadFeedback(r io.Reader) (FeedbackPayload, error) {
	var p FeedbackPayload
	err := readFixed(r, "feedback", &p)
	return p, err
}

func WriteRoundEnd(w io.Writer, p RoundEndPayload) error { return writeFixed(w, "round-end", &p) }
func ReadRoundEnd(r io.Reader) (RoundEndPayload, error) {
	var p RoundEndPayload
	err := readFixed(r, "round-end", &p)
	return p, err
}
