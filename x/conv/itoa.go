package conv

// Itoa appends the base-10 representation of n to dst and returns the
// extended slice. No allocations beyond dst growth; no fmt/strconv dependency.
func Itoa(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		n = -n
	}
	return Utoa(dst, uint64(n))
}

// Utoa appends the base-10 representation of n to dst.
func Utoa(dst []byte, n uint64) []byte {
	if n == 0 {
		return append(dst, '0')
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[i:]...)
}

// Pad2 appends n as exactly two digits, zero-padded. Values above 99 are
// reduced modulo 100.
func Pad2(dst []byte, n uint8) []byte {
	n %= 100
	return append(dst, byte('0'+n/10), byte('0'+n%10))
}
