package qr

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"ms-hotel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooking() models.Booking {
	checkOut := time.Date(2026, 9, 5, 11, 0, 0, 0, time.UTC)
	return models.Booking{
		ID:         42,
		CustomerID: 7,
		RoomID:     3,
		CheckIn:    time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC),
		CheckOut:   &checkOut,
		Status:     models.BookingReserved,
		Total:      480,
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	g := NewPassGenerator("front-desk-secret")
	booking := testBooking()

	payload, err := json.Marshal(booking)
	require.NoError(t, err)

	encrypted, err := encryptAES(payload, g.secret)
	require.NoError(t, err)

	recovered, err := g.DecryptPass(encrypted)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, recovered.ID)
	assert.Equal(t, booking.RoomID, recovered.RoomID)
	assert.Equal(t, booking.Status, recovered.Status)
	require.NotNil(t, recovered.CheckOut)
	assert.True(t, booking.CheckOut.Equal(*recovered.CheckOut))
}

func TestDecryptPass_WrongSecretFails(t *testing.T) {
	g := NewPassGenerator("front-desk-secret")
	other := NewPassGenerator("different-secret")

	payload, err := json.Marshal(testBooking())
	require.NoError(t, err)

	encrypted, err := encryptAES(payload, g.secret)
	require.NoError(t, err)

	// Wrong key yields garbage that fails to unmarshal.
	_, err = other.DecryptPass(encrypted)
	assert.Error(t, err)
}

func TestDecryptPass_MalformedInput(t *testing.T) {
	g := NewPassGenerator("front-desk-secret")

	_, err := g.DecryptPass("not base64!!!")
	assert.Error(t, err)

	_, err = g.DecryptPass("c2hvcnQ=") // too short for an IV
	assert.Error(t, err)
}

func TestGenerateEncryptedPass_ProducesPNG(t *testing.T) {
	g := NewPassGenerator("front-desk-secret")

	png, err := g.GenerateEncryptedPass(testBooking())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "output should be a PNG image")
}

func TestNewPassGenerator_NormalizesSecretLength(t *testing.T) {
	short := NewPassGenerator("x")
	long := NewPassGenerator("a very long secret that exceeds thirty-two bytes easily")

	assert.Len(t, short.secret, 32)
	assert.Len(t, long.secret, 32)
}
