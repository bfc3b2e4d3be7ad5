package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
	"github.com/joseph-ayodele/docfields/internal/repository"
)

type ExtractionService struct {
	processor *pipeline.Processor
	repo      repository.ExtractionRepository
	logger    *slog.Logger
}

// NewExtractionService returns the service. repo may be nil, in which case
// GetExtraction reports FailedPrecondition.
func NewExtractionService(proc *pipeline.Processor, repo repository.ExtractionRepository, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{processor: proc, repo: repo, logger: logger}
}

var _ ExtractionServer = (*ExtractionService)(nil)

func (s *ExtractionService) Classify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, ok := stringField(req, "text")
	if !ok {
		return nil, common.InvalidArgumentError("text is required")
	}
	classifier := s.processor.Parse.Extractor.Classifier()
	scores := make(map[string]any)
	for dt, v := range classifier.Score(text) {
		scores[string(dt)] = v
	}
	docType := classifier.Classify(text)
	common.LoggerFromContext(ctx, s.logger).Debug("server.classify", "doc_type", docType)
	out, err := structpb.NewStruct(map[string]any{
		"doc_type": string(docType),
		"scheme":   string(classifier.Scheme()),
		"scores":   scores,
	})
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

func (s *ExtractionService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, ok := stringField(req, "text")
	if !ok {
		return nil, common.InvalidArgumentError("text is required")
	}
	raw, _ := stringField(req, "doc_type")
	v := common.NewValidator().Field("doc_type", raw, common.DocumentType)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	var docType constants.DocumentType
	if strings.TrimSpace(raw) != "" {
		docType, _ = constants.ParseDocumentType(raw)
	}
	res, err := s.processor.ProcessText(ctx, text, docType)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("server.extract.failed", "err", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(res)
}

func (s *ExtractionService) ExtractFile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path, ok := stringField(req, "path")
	if !ok || strings.TrimSpace(path) == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	res, err := s.processor.ProcessFile(ctx, path)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("server.extract_file.failed", "path", path, "err", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(res)
}

func (s *ExtractionService) GetExtraction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.repo == nil {
		return nil, status.Error(codes.FailedPrecondition, "no store configured")
	}
	raw, _ := stringField(req, "id")
	v := common.NewValidator().Field("id", raw, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	id := uuid.MustParse(raw)
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(res)
}

func stringField(s *structpb.Struct, key string) (string, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", false
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return str.StringValue, true
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}
