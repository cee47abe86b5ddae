package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"parking_rental/internal/domain"
)

var ErrLPRUnavailable = errors.New("plate recognition is not configured")
var ErrPlateNotDetected = errors.New("no plate detected in image")

// TextDetector is the part of the Rekognition client used here.
type TextDetector interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

type LPRService struct {
	detector TextDetector
}

func NewLPRService(detector TextDetector) *LPRService {
	return &LPRService{detector: detector}
}

// ProcessImageForLPR runs text detection on a gate camera image and returns
// the most confident text that normalizes to a valid plate containing a digit.
func (s *LPRService) ProcessImageForLPR(ctx context.Context, imageBytes []byte) (string, float32, error) {
	if s == nil || s.detector == nil {
		return "", 0, ErrLPRUnavailable
	}

	result, err := s.detector.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	})
	if err != nil {
		log.Printf("LPRService: DetectText failed: %v", err)
		return "", 0, fmt.Errorf("rekognition: %w", err)
	}

	var seen []string
	var bestPlate string
	var bestConfidence float32
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine && detection.Type != types.TextTypesWord {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		text := strings.ReplaceAll(*detection.DetectedText, ".", "")
		seen = append(seen, fmt.Sprintf("%s (%.2f)", text, *detection.Confidence))

		plate, err := domain.NormalizePlate(text)
		if err != nil || !strings.ContainsAny(plate, "0123456789") {
			continue
		}
		if *detection.Confidence > bestConfidence {
			bestConfidence = *detection.Confidence
			bestPlate = plate
		}
	}

	if bestPlate == "" {
		log.Printf("LPRService: no plate among %d detections: %s", len(result.TextDetections), strings.Join(seen, ", "))
		return "", 0, ErrPlateNotDetected
	}
	log.Printf("LPRService: detected %s (%.2f)", bestPlate, bestConfidence)
	return bestPlate, bestConfidence, nil
}
