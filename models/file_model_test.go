package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, OcrStatusPending.CanTransitionTo(OcrStatusProcessing))
	assert.True(t, OcrStatusProcessing.CanTransitionTo(OcrStatusCompleted))
	assert.True(t, OcrStatusProcessing.CanTransitionTo(OcrStatusFailed))

	// no backwards or sideways moves
	assert.False(t, OcrStatusPending.CanTransitionTo(OcrStatusCompleted))
	assert.False(t, OcrStatusPending.CanTransitionTo(OcrStatusFailed))
	assert.False(t, OcrStatusProcessing.CanTransitionTo(OcrStatusPending))
	assert.False(t, OcrStatusCompleted.CanTransitionTo(OcrStatusProcessing))
	assert.False(t, OcrStatusFailed.CanTransitionTo(OcrStatusProcessing))
}

func TestCanStartProcessing(t *testing.T) {
	assert.True(t, (&UploadedFile{OcrStatus: OcrStatusPending}).CanStartProcessing())
	assert.True(t, (&UploadedFile{OcrStatus: OcrStatusFailed}).CanStartProcessing())
	assert.False(t, (&UploadedFile{OcrStatus: OcrStatusProcessing}).CanStartProcessing())
	assert.False(t, (&UploadedFile{OcrStatus: OcrStatusCompleted}).CanStartProcessing())
}

func TestWordHeight(t *testing.T) {
	w := OcrWord{Y1: 120, Y3: 164}
	assert.Equal(t, 44, w.Height())
}
