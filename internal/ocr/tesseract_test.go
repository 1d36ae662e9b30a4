package ocr

import (
	"context"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTesseractEngineName(t *testing.T) {
	assert.Equal(t, "tesseract", NewTesseractEngine().Name())
}

func TestRecognizeHonorsCanceledContext(t *testing.T) {
	e := &TesseractEngine{clientFactory: func() *gosseract.Client {
		t.Fatal("client must not be created for a canceled context")
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Recognize(ctx, Input{Image: []byte("img")})
	require.ErrorIs(t, err, context.Canceled)
}
