package hedera

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// EntityID identifies an account, topic, token or contract as shard.realm.num.
type EntityID struct {
	Shard uint64
	Realm uint64
	Num   uint64
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num)
}

func (id EntityID) IsZero() bool {
	return id.Shard == 0 && id.Realm == 0 && id.Num == 0
}

// ParseEntityID accepts the canonical "0.0.123" form.
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return EntityID{}, fmt.Errorf("invalid entity id %q: expected shard.realm.num", s)
	}
	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return EntityID{}, fmt.Errorf("invalid entity id %q: %w", s, err)
		}
		nums[i] = n
	}
	return EntityID{Shard: nums[0], Realm: nums[1], Num: nums[2]}, nil
}

func IsEntityID(s string) bool {
	_, err := ParseEntityID(s)
	return err == nil
}

// ToEVMAddress returns the long-zero EVM address of the entity: 4 bytes
// shard, 8 bytes realm, 8 bytes num, big endian.
func (id EntityID) ToEVMAddress() common.Address {
	var b [common.AddressLength]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(id.Shard))
	binary.BigEndian.PutUint64(b[4:12], id.Realm)
	binary.BigEndian.PutUint64(b[12:20], id.Num)
	return common.BytesToAddress(b[:])
}

// EntityIDFromEVMAddress is the inverse of ToEVMAddress. Only shard 0 realm 0
// long-zero addresses are accepted; ECDSA aliases can only be resolved through
// the mirror node.
func EntityIDFromEVMAddress(hex string) (EntityID, error) {
	if !common.IsHexAddress(hex) {
		return EntityID{}, fmt.Errorf("invalid evm address %q", hex)
	}
	b := common.HexToAddress(hex).Bytes()
	for _, c := range b[0:12] {
		if c != 0 {
			return EntityID{}, fmt.Errorf("%s is not a long-zero address", hex)
		}
	}
	num := binary.BigEndian.Uint64(b[12:20])
	if num == 0 {
		return EntityID{}, fmt.Errorf("%s is the zero address", hex)
	}
	return EntityID{Num: num}, nil
}
