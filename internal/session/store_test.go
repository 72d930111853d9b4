package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStoreVerificationKeys(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	v := &Verification{
		PatientID:   "p-1",
		EncounterID: "enc-7",
		Record:      map[string]any{"fullName": "Jane Doe"},
		VerifiedAt:  "6/15/2025",
	}
	require.NoError(t, store.SaveVerification(ctx, "sess-1", v))

	// The identifiers live under their own keys alongside the record.
	got, err := mr.Get("session:sess-1:patientId")
	require.NoError(t, err)
	assert.Equal(t, "p-1", got)
	got, err = mr.Get("session:sess-1:encounterId")
	require.NoError(t, err)
	assert.Equal(t, "enc-7", got)

	loaded, err := store.LoadVerification(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "p-1", loaded.PatientID)
	assert.Equal(t, "Jane Doe", loaded.Record["fullName"])
}

func TestRedisStoreInsuranceSideDefaultsToPrimary(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	side, err := store.InsuranceSide(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, InsurancePrimary, side)

	require.NoError(t, store.SetInsuranceSide(ctx, "sess-1", InsuranceSecondary))
	side, err = store.InsuranceSide(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, InsuranceSecondary, side)

	// Garbage toggles fall back to primary rather than failing the capture.
	require.NoError(t, store.SetInsuranceSide(ctx, "sess-1", InsuranceSide("tertiary")))
	side, err = store.InsuranceSide(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, InsurancePrimary, side)
}

func TestRedisStoreCorruptVerificationGatesClosed(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("session:sess-1:patient", "{not json"))

	loaded, err := store.LoadVerification(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStoreClearRemovesAllSessionKeys(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVerification(ctx, "sess-1", &Verification{PatientID: "p-1"}))
	require.NoError(t, store.SetInsuranceSide(ctx, "sess-1", InsuranceSecondary))
	require.NoError(t, store.Clear(ctx, "sess-1"))

	for _, key := range []string{
		"session:sess-1:patient",
		"session:sess-1:patientId",
		"session:sess-1:encounterId",
		"session:sess-1:insuranceType",
	} {
		assert.False(t, mr.Exists(key), "key %s should be gone", key)
	}
}
