package utils

import "strings"

// Seat labels combine an alphabetical row label with a 1-based seat
// number, e.g. "A1", "B12", "AA3".  Rows map to zero-based indexes in
// base-26: A=0 .. Z=25, AA=26.

// NormalizeSeatLabel trims and upper-cases a raw label and reports
// whether it parses as row letters followed by digits with no leading
// zero.
func NormalizeSeatLabel(raw string) (string, bool) {
	label := strings.ToUpper(strings.TrimSpace(raw))
	row, num, ok := splitSeatLabel(label)
	if !ok {
		return "", false
	}
	return row + num, true
}

// SeatInBounds reports whether the (already normalized) label falls
// inside a layout of rows × seatsPerRow.
func SeatInBounds(label string, rows, seatsPerRow uint32) bool {
	row, num, ok := splitSeatLabel(label)
	if !ok {
		return false
	}
	idx, ok := RowLabelToIndex(row)
	if !ok || uint32(idx) >= rows {
		return false
	}
	n := 0
	for i := 0; i < len(num); i++ {
		n = n*10 + int(num[i]-'0')
	}
	return n >= 1 && uint32(n) <= seatsPerRow
}

// RowLabelToIndex converts a row label like "A" or "AA" into its
// zero-based index.
func RowLabelToIndex(label string) (int, bool) {
	if label == "" {
		return -1, false
	}
	n := 0
	for i := 0; i < len(label); i++ {
		ch := label[i]
		if ch < 'A' || ch > 'Z' {
			return -1, false
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, true
}

// IndexToRowLabel converts a zero-based index to a row label like A, B,
// AA.
func IndexToRowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []rune
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

func splitSeatLabel(label string) (row, num string, ok bool) {
	i := 0
	for i < len(label) && label[i] >= 'A' && label[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(label) {
		return "", "", false
	}
	row, num = label[:i], label[i:]
	for j := 0; j < len(num); j++ {
		if num[j] < '0' || num[j] > '9' {
			return "", "", false
		}
	}
	if num[0] == '0' {
		return "", "", false
	}
	return row, num, true
}
