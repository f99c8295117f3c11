package instr

import (
	"fmt"
	"strconv"
	"strings"

	"multconst/internal/mcerrors"
)

// Print renders an instruction in the compact textual form used in dumps
// and round-trip tests.
func Print(i Instruction) string {
	switch i.Op {
	case OpNop:
		return "nop"
	case OpZero:
		return "0"
	case OpNegate:
		return "-n"
	case OpShift:
		return fmt.Sprintf("n<<%d", i.Amount)
	case OpAdd:
		switch i.Flag {
		case OperandR1:
			return "n+1"
		case OperandFactor:
			return "n+m"
		}
	case OpSubtract:
		switch i.Flag {
		case OperandR1:
			return "n-1"
		case OperandFactor:
			return "n-m"
		case OperandReverseSub1:
			return "1-n"
		case OperandReverseSubFactor:
			return "m-n"
		}
	}
	return "?"
}

// PrintVerbose renders an instruction as a human-readable register-transfer
// line.
func PrintVerbose(i Instruction) string {
	switch i.Op {
	case OpNop:
		return "r[n] <- r[1]"
	case OpZero:
		return "r[n] <- 0"
	case OpNegate:
		return "r[n] <- -r[n]"
	case OpShift:
		return fmt.Sprintf("r[n] <- r[n] << %d", i.Amount)
	case OpAdd:
		switch i.Flag {
		case OperandR1:
			return "r[n] <- r[n] + r[1]"
		case OperandFactor:
			return "r[n] <- r[n] + r[n-1]"
		}
	case OpSubtract:
		switch i.Flag {
		case OperandR1:
			return "r[n] <- r[n] - r[1]"
		case OperandFactor:
			return "r[n] <- r[n] - r[n-1]"
		case OperandReverseSub1:
			return "r[n] <- r[1] - r[n]"
		case OperandReverseSubFactor:
			return "r[n] <- r[n-1] - r[n]"
		}
	}
	return "?"
}

// PrintSequence renders a sequence as "[e1, e2, ...]".
func PrintSequence(s Sequence) string {
	parts := make([]string, len(s))
	for i, ins := range s {
		parts[i] = Print(ins)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// GoString implements fmt.GoStringer for %#v debug output in test failures.
func (i Instruction) GoString() string {
	return fmt.Sprintf("instr.Instruction{Op: %s, Amount: %d, Flag: %d, Cost: %v}",
		i.Op, i.Amount, i.Flag, i.Cost)
}

// Parse inverts Print on the image of Print. The returned instruction's
// Cost field is left at zero — callers re-derive it from a profile via
// profile.Recost, since text alone does not carry a cost model.
func Parse(text string) (Instruction, error) {
	text = strings.TrimSpace(text)
	switch text {
	case "nop":
		return Instruction{Op: OpNop}, nil
	case "0":
		return Instruction{Op: OpZero}, nil
	case "-n":
		return Instruction{Op: OpNegate}, nil
	case "n+1":
		return Instruction{Op: OpAdd, Flag: OperandR1}, nil
	case "n+m":
		return Instruction{Op: OpAdd, Flag: OperandFactor}, nil
	case "n-1":
		return Instruction{Op: OpSubtract, Flag: OperandR1}, nil
	case "n-m":
		return Instruction{Op: OpSubtract, Flag: OperandFactor}, nil
	case "1-n":
		return Instruction{Op: OpSubtract, Flag: OperandReverseSub1}, nil
	case "m-n":
		return Instruction{Op: OpSubtract, Flag: OperandReverseSubFactor}, nil
	}
	if strings.HasPrefix(text, "n<<") {
		amt, err := strconv.Atoi(text[len("n<<"):])
		if err != nil {
			return Instruction{}, mcerrors.NewParseError("malformed shift amount", text, len("n<<"))
		}
		if amt < 1 {
			return Instruction{}, mcerrors.NewParseError("shift amount must be >= 1", text, len("n<<"))
		}
		return Instruction{Op: OpShift, Amount: amt}, nil
	}
	return Instruction{}, mcerrors.NewParseError("unrecognised instruction", text, 0)
}

// ParseSequence inverts PrintSequence: "[e1, e2, ...]" -> Sequence.
// An empty list "[]" parses to an empty, non-nil Sequence.
func ParseSequence(text string) (Sequence, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return nil, mcerrors.NewParseError("sequence must be bracketed", text, 0)
	}
	inner := strings.TrimSpace(text[1 : len(text)-1])
	if inner == "" {
		return Sequence{}, nil
	}
	parts := strings.Split(inner, ",")
	seq := make(Sequence, 0, len(parts))
	for _, p := range parts {
		ins, err := Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		seq = append(seq, ins)
	}
	return seq, nil
}
