package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	out *rekognition.DetectTextOutput
	err error
}

func (f fakeDetector) DetectText(_ context.Context, _ *rekognition.DetectTextInput, _ ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	return f.out, f.err
}

func detection(text string, confidence float32, kind types.TextTypes) types.TextDetection {
	return types.TextDetection{DetectedText: aws.String(text), Confidence: aws.Float32(confidence), Type: kind}
}

func TestLPRService_PicksMostConfidentPlate(t *testing.T) {
	s := NewLPRService(fakeDetector{out: &rekognition.DetectTextOutput{TextDetections: []types.TextDetection{
		detection("PARKING", 99, types.TextTypesLine),
		detection("51G-123.45", 91, types.TextTypesLine),
		detection("29a 12345", 97, types.TextTypesWord),
		detection("!!", 99.5, types.TextTypesWord),
	}}})

	plate, confidence, err := s.ProcessImageForLPR(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "29A12345", plate)
	assert.Equal(t, float32(97), confidence)
}

func TestLPRService_Errors(t *testing.T) {
	_, _, err := NewLPRService(nil).ProcessImageForLPR(context.Background(), nil)
	assert.ErrorIs(t, err, ErrLPRUnavailable)

	boom := errors.New("throttled")
	_, _, err = NewLPRService(fakeDetector{err: boom}).ProcessImageForLPR(context.Background(), nil)
	assert.ErrorIs(t, err, boom)

	empty := NewLPRService(fakeDetector{out: &rekognition.DetectTextOutput{}})
	_, _, err = empty.ProcessImageForLPR(context.Background(), nil)
	assert.ErrorIs(t, err, ErrPlateNotDetected)
}
