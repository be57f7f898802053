package console

import "bytes"

// Reassemble splits pending+data into complete lines, without their '\n'
// terminators, and returns the unterminated remainder. A remainder longer
// than limit is emitted as a line of its own so memory stays bounded; a
// signature straddling that forced cut can be missed.
//
// Neither input slice is retained by the results.
func Reassemble(pending, data []byte, limit int) (lines [][]byte, rest []byte) {
	buf := make([]byte, 0, len(pending)+len(data))
	buf = append(buf, pending...)
	buf = append(buf, data...)

	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, buf[:i:i])
		buf = buf[i+1:]
	}

	if len(buf) > limit {
		return append(lines, buf), nil
	}
	if len(buf) == 0 {
		return lines, nil
	}
	return lines, buf
}
