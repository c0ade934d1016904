package attendance

// CodeLen is the join code length.
const CodeLen = 6

// ValidCode reports whether s is exactly six decimal digits.
func ValidCode(s string) bool {
	if len(s) != CodeLen {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExtractCode pulls a join code out of arbitrary scanned text: the first
// run of digits, truncated to six. ok is true only for a full six-digit
// result, which is the submission trigger.
func ExtractCode(decoded string) (code string, ok bool) {
	start := -1
	for i, r := range decoded {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			if i-start+1 == CodeLen {
				return decoded[start : i+1], true
			}
			continue
		}
		if start >= 0 {
			return decoded[start:i], false
		}
	}
	if start >= 0 {
		return decoded[start:], false
	}
	return "", false
}
