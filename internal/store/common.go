package store

import "encoding/binary"

// Prefix constants for all store types
const (
	prefixHeader byte = iota + 1
	prefixMainchainBlock
	prefixMainchainNumber
)

// makeKey creates a key from a prefix and hash
func makeKey(prefix byte, hash []byte) []byte {
	key := make([]byte, 1+len(hash))
	key[0] = prefix
	copy(key[1:], hash)
	return key
}

// numberKey keys a block number so that keys sort in numeric order.
func numberKey(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return makeKey(prefixMainchainNumber, b[:])
}
