package registry

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

var (
	admin      = common.HexToAddress("0x1000000000000000000000000000000000000001")
	collection = common.HexToAddress("0x2000000000000000000000000000000000000001")
	payee      = common.HexToAddress("0x3000000000000000000000000000000000000001")
)

func TestSetRoyalty_RegistersAndOverwrites(t *testing.T) {
	r := New(admin, nil)
	ctx := context.Background()

	require.NoError(t, r.SetRoyalty(ctx, admin, collection, payee, 1000))

	got, rate := r.GetRoyalty(collection)
	assert.Equal(t, payee, got)
	assert.Equal(t, uint32(1000), rate)

	other := common.HexToAddress("0x3000000000000000000000000000000000000002")
	require.NoError(t, r.SetRoyalty(ctx, admin, collection, other, 250))

	got, rate = r.GetRoyalty(collection)
	assert.Equal(t, other, got)
	assert.Equal(t, uint32(250), rate)
}

func TestSetRoyalty_RejectsNonAdmin(t *testing.T) {
	r := New(admin, nil)

	err := r.SetRoyalty(context.Background(), payee, collection, payee, 1000)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	_, rate := r.GetRoyalty(collection)
	assert.Equal(t, uint32(0), rate)
}

func TestSetRoyalty_RejectsFullRate(t *testing.T) {
	r := New(admin, nil)
	ctx := context.Background()

	err := r.SetRoyalty(ctx, admin, collection, payee, 10000)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRate))

	err = r.SetRoyalty(ctx, admin, collection, payee, 20000)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRate))

	// 9999 is the highest accepted rate.
	assert.NoError(t, r.SetRoyalty(ctx, admin, collection, payee, 9999))
}

func TestGetRoyalty_UnknownCollection(t *testing.T) {
	r := New(admin, nil)

	got, rate := r.GetRoyalty(collection)
	assert.Equal(t, common.Address{}, got)
	assert.Equal(t, uint32(0), rate)
}
