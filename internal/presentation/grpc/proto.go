package grpc

// proto.go defines the gRPC server interface for heart/risk/v1/risk.proto.
// Messages travel with the JSON codec registered in json_codec.go, so the
// message types in handler.go are plain structs.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "heart.risk.v1.HeartRiskService"

// Full method names, as seen by interceptors.
const (
	MethodAssessPatient   = "/" + serviceName + "/AssessPatient"
	MethodClassifyPatient = "/" + serviceName + "/ClassifyPatient"
	MethodGetAssessment   = "/" + serviceName + "/GetAssessment"
)

// HeartRiskServiceServer is the server API for HeartRiskService.
type HeartRiskServiceServer interface {
	AssessPatient(context.Context, *AssessPatientRequest) (*AssessPatientResponse, error)
	ClassifyPatient(context.Context, *ClassifyPatientRequest) (*ClassifyPatientResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	mustEmbedUnimplementedHeartRiskServiceServer()
}

// UnimplementedHeartRiskServiceServer provides forward-compatible default implementations.
type UnimplementedHeartRiskServiceServer struct{}

func (UnimplementedHeartRiskServiceServer) AssessPatient(context.Context, *AssessPatientRequest) (*AssessPatientResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessPatient not implemented")
}
func (UnimplementedHeartRiskServiceServer) ClassifyPatient(context.Context, *ClassifyPatientRequest) (*ClassifyPatientResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ClassifyPatient not implemented")
}
func (UnimplementedHeartRiskServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedHeartRiskServiceServer) mustEmbedUnimplementedHeartRiskServiceServer() {}

// RegisterHeartRiskServiceServer registers the HeartRiskServiceServer with the gRPC server.
func RegisterHeartRiskServiceServer(s grpclib.ServiceRegistrar, srv HeartRiskServiceServer) {
	s.RegisterService(&heartRiskServiceDesc, srv)
}

var heartRiskServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*HeartRiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AssessPatient", Handler: assessPatientHandler},
		{MethodName: "ClassifyPatient", Handler: classifyPatientHandler},
		{MethodName: "GetAssessment", Handler: getAssessmentHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "heart/risk/v1/risk.proto",
}

func assessPatientHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(AssessPatientRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeartRiskServiceServer).AssessPatient(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodAssessPatient}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(HeartRiskServiceServer).AssessPatient(ctx, req.(*AssessPatientRequest))
	})
}

func classifyPatientHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(ClassifyPatientRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeartRiskServiceServer).ClassifyPatient(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodClassifyPatient}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(HeartRiskServiceServer).ClassifyPatient(ctx, req.(*ClassifyPatientRequest))
	})
}

func getAssessmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetAssessmentRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeartRiskServiceServer).GetAssessment(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetAssessment}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(HeartRiskServiceServer).GetAssessment(ctx, req.(*GetAssessmentRequest))
	})
}
