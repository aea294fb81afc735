package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "twsearch.v1.JobSearch"

	SearchJobsMethod    = "/" + ServiceName + "/SearchJobs"
	GetJobMethod        = "/" + ServiceName + "/GetJob"
	ListCompaniesMethod = "/" + ServiceName + "/ListCompanies"
)

// JobSearchServer is the server API of twsearch.v1.JobSearch. Requests and
// responses are google.protobuf.Struct documents with the same field names
// as the HTTP API.
type JobSearchServer interface {
	SearchJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListCompanies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes twsearch.v1.JobSearch for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JobSearchServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SearchJobs", Handler: unaryHandler(SearchJobsMethod, JobSearchServer.SearchJobs)},
		{MethodName: "GetJob", Handler: unaryHandler(GetJobMethod, JobSearchServer.GetJob)},
		{MethodName: "ListCompanies", Handler: unaryHandler(ListCompaniesMethod, JobSearchServer.ListCompanies)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "twsearch/v1/job_search.proto",
}

type structMethod func(JobSearchServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(JobSearchServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(JobSearchServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
