package exttools

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSeqType = errors.New("unknown sequence data type")

// SeqType describes the input data: paired-end reads, single-end reads, or an
// assembly.
type SeqType int

const (
	Paired SeqType = iota
	Single
	Assembled
)

func (s SeqType) String() string {
	switch s {
	case Paired:
		return "paired"
	case Single:
		return "single"
	case Assembled:
		return "assembled"
	}
	return fmt.Sprintf("SeqType(%d)", int(s))
}

func ParseSeqType(name string) (SeqType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "paired":
		return Paired, nil
	case "single":
		return Single, nil
	case "assembled":
		return Assembled, nil
	}
	return 0, fmt.Errorf("%w %q: must be one of paired, single or assembled", ErrUnknownSeqType, name)
}

// seqseroMode is the SeqSero -m (SeqSero2 -t) input mode for the data type.
func (s SeqType) seqseroMode() (string, error) {
	switch s {
	case Paired:
		return "2", nil
	case Single:
		return "3", nil
	case Assembled:
		return "4", nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnknownSeqType, s)
}

// Files checks that the number of inputs fits the data type.
func (s SeqType) Files(files []string) error {
	want := 1
	if s == Paired {
		want = 2
	}
	if len(files) != want {
		return fmt.Errorf("%v data needs %d input file(s), got %d", s, want, len(files))
	}
	return nil
}
