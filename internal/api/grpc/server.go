// Package grpcapi exposes document validation over gRPC.
//
// Messages are google.protobuf.Struct so no generated stubs are needed:
//
//	service BalanceSchemaService {
//	  // request:  {"kind": string, "document": string (raw JSON)}
//	  // response: {"id": string, "valid": bool, "violations": [{"path", "reason", "code"}]}
//	  rpc Validate(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
package grpcapi

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"balance-schema-service/internal/models"
	"balance-schema-service/internal/schema"
	"balance-schema-service/internal/service/validation"
)

const (
	ServiceName    = "balance.schema.v1.BalanceSchemaService"
	ValidateMethod = "/" + ServiceName + "/Validate"
)

// ValidatorServer is the server API for BalanceSchemaService.
type ValidatorServer interface {
	Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValidatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Validate",
			Handler:    validateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "balance/schema/v1/service.proto",
}

func validateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidatorServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ValidateMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ValidatorServer).Validate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server implements ValidatorServer on top of the validation handler.
type Server struct {
	handler     *validation.Handler
	defaultKind string
}

// Register registers the validation service on g.
func Register(g grpc.ServiceRegistrar, handler *validation.Handler, defaultKind string) *Server {
	s := &Server{handler: handler, defaultKind: defaultKind}
	g.RegisterService(&serviceDesc, s)
	return s
}

// Validate validates the raw JSON in the "document" field. Violations are
// returned in the response; only requests that cannot be validated fail.
func (s *Server) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	docField, ok := fields["document"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "document is required")
	}
	document, ok := docField.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "document must be a string of JSON")
	}

	kind := s.defaultKind
	if k := fields["kind"].GetStringValue(); k != "" {
		kind = k
	}

	result, err := s.handler.Validate(ctx, validation.Request{
		Source:  "grpc",
		Kind:    kind,
		Payload: []byte(document.StringValue),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return resultToStruct(result)
}

func toStatus(err error) error {
	var pe *schema.ParseError
	switch {
	case errors.As(err, &pe):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, schema.ErrUnknownKind):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, validation.ErrDocumentTooLarge):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func resultToStruct(result models.ValidationResult) (*structpb.Struct, error) {
	violations := make([]interface{}, len(result.Violations))
	for i, v := range result.Violations {
		violations[i] = map[string]interface{}{
			"path":   v.Path,
			"reason": v.Reason,
			"code":   v.Code,
		}
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"id":         result.ID,
		"kind":       result.Kind,
		"valid":      result.Valid,
		"violations": violations,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ViolationsFromStruct decodes the violations list of a Validate response.
func ViolationsFromStruct(resp *structpb.Struct) []models.Violation {
	list := resp.GetFields()["violations"].GetListValue().GetValues()
	out := make([]models.Violation, 0, len(list))
	for _, item := range list {
		f := item.GetStructValue().GetFields()
		out = append(out, models.Violation{
			Path:   f["path"].GetStringValue(),
			Reason: f["reason"].GetStringValue(),
			Code:   f["code"].GetStringValue(),
		})
	}
	return out
}
