package keeper

import (
	"encoding/binary"
)

var (
	// PoolKeyPrefix is the prefix for pool store keys
	PoolKeyPrefix = []byte{0x01}

	// PoolCountKey is the key for the next pool ID counter
	PoolCountKey = []byte{0x02}

	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x03}

	// PoolTWAPKeyPrefix stores pool TWAP records
	PoolTWAPKeyPrefix = []byte{0x04}
)

// PoolKey returns the store key for a pool by ID
func PoolKey(poolID uint64) []byte {
	poolIDBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(poolIDBytes, poolID)
	return append(PoolKeyPrefix, poolIDBytes...)
}

// PoolTWAPKey returns the store key for a pool's TWAP record
func PoolTWAPKey(poolID uint64) []byte {
	poolIDBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(poolIDBytes, poolID)
	return append(PoolTWAPKeyPrefix, poolIDBytes...)
}
