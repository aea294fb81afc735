// Package grpcserver implements the JobSearch gRPC server.
//
// It delegates all business logic to search.Service and handles
// only the gRPC transport concerns: request-id metadata, error mapping,
// and conversion between domain types and Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/search"
	"github.com/rodruizronald/tw-search/internal/telemetry"
)

const requestIDKey = "x-request-id"

// Searcher is the part of search.Service the server uses.
type Searcher interface {
	SearchRaw(ctx context.Context, raw search.RawParams) (*search.Page, error)
	GetJob(ctx context.Context, id int64) (*search.JobResult, error)
	CompanyFacets(ctx context.Context, lang string) ([]search.CompanyFacet, error)
}

// Server implements JobSearchServer.
type Server struct {
	svc Searcher
}

// NewServer constructs a gRPC Server backed by the given Searcher.
func NewServer(svc Searcher) *Server {
	return &Server{svc: svc}
}

// New returns a grpc.Server with JobSearch and the standard health service
// registered. The health server reports SERVING for both.
func New(svc Searcher, logger *zap.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(UnaryInterceptor(logger)))
	gs := grpc.NewServer(opts...)
	gs.RegisterService(&ServiceDesc, NewServer(svc))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs, hs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// SearchJobs runs a search. The request takes the HTTP query parameters as
// fields; the response is {items, totalCount, pagination}.
func (s *Server) SearchJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := search.RawParams{
		SearchQuery:     field(req, "q"),
		Limit:           field(req, "limit"),
		Offset:          field(req, "offset"),
		Page:            field(req, "page"),
		PageSize:        field(req, "page_size"),
		ExperienceLevel: field(req, "experience_level"),
		EmploymentType:  field(req, "employment_type"),
		Location:        field(req, "location"),
		WorkMode:        field(req, "work_mode"),
		Province:        field(req, "province"),
		JobFunction:     field(req, "job_function"),
		Company:         field(req, "company"),
		DateFrom:        field(req, "date_from"),
		DateTo:          field(req, "date_to"),
		Language:        field(req, "language"),
	}
	if raw.SearchQuery == "" {
		raw.SearchQuery = field(req, "search_query")
	}

	page, err := s.svc.SearchRaw(ctx, raw)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{
		"items":      page.Items,
		"totalCount": page.TotalCount,
		"pagination": page.Info(),
	})
}

// GetJob returns one active job. The request carries {"id": n}.
func (s *Server) GetJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := strconv.ParseInt(field(req, "id"), 10, 64)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid job id")
	}
	job, err := s.svc.GetJob(ctx, id)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(job)
}

// ListCompanies returns {"companies": [...]} for the requested language.
func (s *Server) ListCompanies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	facets, err := s.svc.CompanyFacets(ctx, field(req, "language"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"companies": facets})
}

// ─── Interceptor ─────────────────────────────────────────────────────────────

// UnaryInterceptor propagates x-request-id metadata into the context, echoes
// it in the response header and logs each call.
func UnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		var supplied string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDKey); len(vals) > 0 {
				supplied = vals[0]
			}
		}
		id := telemetry.EnsureRequestID(supplied)
		ctx = telemetry.WithRequestID(ctx, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, id))

		resp, err := handler(ctx, req)

		logger.Info("grpc",
			zap.String("request_id", id),
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)))
		return resp, err
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	msg := apperr.PublicMessage(err)
	switch apperr.TypeOf(err) {
	case apperr.ErrTypeInvalidInput:
		return status.Error(codes.InvalidArgument, msg)
	case apperr.ErrTypeNotFound:
		return status.Error(codes.NotFound, msg)
	case apperr.ErrTypeRateLimit:
		return status.Error(codes.ResourceExhausted, msg)
	case apperr.ErrTypeUnavailable:
		return status.Error(codes.Unavailable, msg)
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

// field returns a request field as the string a query parameter would carry.
// Whole numbers print without a fraction; absent and null fields are "".
func field(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		if k.NumberValue == math.Trunc(k.NumberValue) {
			return strconv.FormatInt(int64(k.NumberValue), 10)
		}
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	default:
		return ""
	}
}

// toStruct converts v through its JSON encoding, so gRPC and HTTP clients
// see the same field names.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}
