package hedera

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityID(t *testing.T) {
	id, err := ParseEntityID("0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, EntityID{Num: 1234}, id)
	assert.Equal(t, "0.0.1234", id.String())

	for _, bad := range []string{"", "0.0", "0.0.x", "1.2.3.4", "0.0.-1"} {
		_, err := ParseEntityID(bad)
		assert.Error(t, err, bad)
	}
}

func TestEVMAddressRoundTrip(t *testing.T) {
	id := EntityID{Num: 1234}
	addr := id.ToEVMAddress()
	assert.Equal(t, "0x00000000000000000000000000000000000004d2", strings.ToLower(addr.Hex()))

	back, err := EntityIDFromEVMAddress(addr.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, back)

	_, err = EntityIDFromEVMAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	assert.Error(t, err, "ecdsa aliases are not long-zero")
	_, err = EntityIDFromEVMAddress("0x0000000000000000000000000000000000000000")
	assert.Error(t, err)
}

func TestParseTransactionID(t *testing.T) {
	id, err := ParseTransactionID("0.0.123@1700000000.000000001")
	require.NoError(t, err)
	assert.Equal(t, "0.0.123", id.Payer.String())
	assert.Equal(t, "0.0.123-1700000000-000000001", id.MirrorFormat())
	assert.Equal(t, "0.0.123@1700000000.000000001", id.String())

	mirror, err := ParseTransactionID("0.0.123-1700000000-000000001")
	require.NoError(t, err)
	assert.Equal(t, id, mirror)

	short, err := ParseTransactionID("0.0.5@1700000000.42")
	require.NoError(t, err)
	assert.Equal(t, "0.0.5-1700000000-000000042", short.MirrorFormat())

	sched, err := ParseTransactionID("0.0.5@1700000000.1?scheduled")
	require.NoError(t, err)
	assert.True(t, sched.Scheduled)

	_, err = ParseTransactionID("0.0.5@abc")
	assert.Error(t, err)
	assert.Equal(t, "garbage", ToMirrorFormat("garbage"))
}

func TestReceiptSuccess(t *testing.T) {
	assert.True(t, (&Receipt{Status: StatusSuccess}).IsSuccess())
	assert.True(t, (&Receipt{Status: StatusTokenAlreadyAssociatedToAccount}).IsSuccess())
	assert.False(t, (&Receipt{Status: "INVALID_SIGNATURE"}).IsSuccess())
	var nilReceipt *Receipt
	assert.False(t, nilReceipt.IsSuccess())
}
