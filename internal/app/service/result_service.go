package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"harf_sayi/internal/common"
	"harf_sayi/internal/domain/model"
	"harf_sayi/internal/domain/repository"
	"harf_sayi/internal/platform/spreadsheet"
)

// ResultPublisher is notified after a result has been stored.
type ResultPublisher interface {
	Publish(ctx context.Context, result *model.TestResult) error
}

type ResultService struct {
	resultRepo     repository.TestResultRepository
	publisher      ResultPublisher
	fallbackUserID int64
}

// NewResultService builds the service. fallbackUserID owns results that
// arrive without a user id; publisher may be nil.
func NewResultService(resultRepo repository.TestResultRepository, publisher ResultPublisher, fallbackUserID int64) *ResultService {
	return &ResultService{
		resultRepo:     resultRepo,
		publisher:      publisher,
		fallbackUserID: fallbackUserID,
	}
}

// SaveRequest is a decoded /test/save body.
type SaveRequest struct {
	UserID      *int64
	TestName    string
	Score       float64
	Hits        *float64
	Misses      *float64
	FalseAlarms *float64
	Extra       model.Extra
}

const (
	fieldUserID      = "userId"
	fieldTestName    = "testName"
	fieldScore       = "score"
	fieldHits        = "hits"
	fieldMisses      = "misses"
	fieldFalseAlarms = "falseAlarms"
)

// ParseSaveRequest decodes a result body. Fields other than the named ones
// are collected into Extra as a single JSON object.
func ParseSaveRequest(body []byte) (*SaveRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: request body must be a JSON object", common.ErrBadRequest)
	}

	req := &SaveRequest{}
	var err error

	if req.UserID, err = parseUserID(fields[fieldUserID]); err != nil {
		return nil, err
	}

	name, ok := decodeAny(fields[fieldTestName]).(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: testName and score are required", common.ErrValidation)
	}
	req.TestName = name

	score, ok := decodeAny(fields[fieldScore]).(float64)
	if !ok {
		return nil, fmt.Errorf("%w: testName and score are required", common.ErrValidation)
	}
	req.Score = score

	for key, dst := range map[string]**float64{
		fieldHits:        &req.Hits,
		fieldMisses:      &req.Misses,
		fieldFalseAlarms: &req.FalseAlarms,
	} {
		if *dst, err = parseOptionalNumber(key, fields[key]); err != nil {
			return nil, err
		}
	}

	extra := map[string]json.RawMessage{}
	for key, raw := range fields {
		switch key {
		case fieldUserID, fieldTestName, fieldScore, fieldHits, fieldMisses, fieldFalseAlarms:
			continue
		}
		extra[key] = raw
	}
	if len(extra) > 0 {
		b, err := json.Marshal(extra)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid extra fields", common.ErrBadRequest)
		}
		req.Extra = b
	}

	return req, nil
}

func decodeAny(raw json.RawMessage) interface{} {
	if raw == nil {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// parseUserID accepts a positive integer or integer string. Empty-ish values
// (null, 0, "", false) mean "not supplied".
func parseUserID(raw json.RawMessage) (*int64, error) {
	invalid := fmt.Errorf("%w: userId must be a positive integer", common.ErrValidation)

	switch v := decodeAny(raw).(type) {
	case nil:
		return nil, nil
	case bool:
		if !v {
			return nil, nil
		}
		return nil, invalid
	case float64:
		if v == 0 {
			return nil, nil
		}
		if v < 0 || v != math.Trunc(v) || v >= 1<<63 {
			return nil, invalid
		}
		id := int64(v)
		return &id, nil
	case string:
		if v == "" {
			return nil, nil
		}
		id, err := ParseUserID(v)
		if err != nil {
			return nil, err
		}
		return &id, nil
	default:
		return nil, invalid
	}
}

// ParseUserID parses a user id from text, such as a query parameter.
func ParseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: userId must be a positive integer", common.ErrValidation)
	}
	return id, nil
}

func parseOptionalNumber(key string, raw json.RawMessage) (*float64, error) {
	switch v := decodeAny(raw).(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a number", common.ErrValidation, key)
	}
}

func (s *ResultService) resolveUser(userID *int64) (int64, error) {
	if userID != nil {
		return *userID, nil
	}
	if s.fallbackUserID == 0 {
		return 0, fmt.Errorf("%w: userId is required", common.ErrValidation)
	}
	return s.fallbackUserID, nil
}

// Save validates body, stores one result row and publishes it.
func (s *ResultService) Save(ctx context.Context, body []byte) (*model.TestResult, error) {
	req, err := ParseSaveRequest(body)
	if err != nil {
		return nil, err
	}
	userID, err := s.resolveUser(req.UserID)
	if err != nil {
		return nil, err
	}

	result := &model.TestResult{
		UserID:      userID,
		TestName:    req.TestName,
		Score:       req.Score,
		Hits:        req.Hits,
		Misses:      req.Misses,
		FalseAlarms: req.FalseAlarms,
		Extra:       req.Extra,
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save test result: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, result); err != nil {
			slog.Warn("failed to publish test result", "result_id", result.ID, "error", err)
		}
	}
	return result, nil
}

// ResultsForUser lists a user's results, newest first. A nil userID selects
// the fallback user.
func (s *ResultService) ResultsForUser(ctx context.Context, userID *int64) ([]model.TestResult, error) {
	id, err := s.resolveUser(userID)
	if err != nil {
		return nil, err
	}
	results, err := s.resultRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for user %d: %w", id, err)
	}
	return results, nil
}

func (s *ResultService) AllResults(ctx context.Context) ([]model.TestResultWithUsername, error) {
	results, err := s.resultRepo.ListWithUsername(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

// ExportAll writes every result as an xlsx workbook.
func (s *ResultService) ExportAll(ctx context.Context, w io.Writer) error {
	results, err := s.AllResults(ctx)
	if err != nil {
		return err
	}
	return spreadsheet.WriteResults(w, results)
}
