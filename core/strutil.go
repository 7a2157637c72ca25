package core

// utoa converts an unsigned integer to a string without the fmt package
func utoa(n uint32) string {
	return utoa64(uint64(n))
}

// utoa64 is utoa for 64-bit values (uptimes, tick conversions)
func utoa64(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// hex32 formats v as 0x-prefixed, zero-padded hexadecimal
func hex32(v uint32) string {
	const digits = "0123456789abcdef"
	var buf [10]byte
	buf[0], buf[1] = '0', 'x'
	for i := 9; i >= 2; i-- {
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return string(buf[:])
}
