package errors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcCodes = map[Code]codes.Code{
	CodeOK:                 codes.OK,
	CodeCanceled:           codes.Canceled,
	CodeInvalidArgument:    codes.InvalidArgument,
	CodeNotFound:           codes.NotFound,
	CodeAlreadyExists:      codes.AlreadyExists,
	CodeFailedPrecondition: codes.FailedPrecondition,
	CodeInternal:           codes.Internal,
	CodeUnavailable:        codes.Unavailable,
}

var fromGRPCCodes = func() map[codes.Code]Code {
	out := make(map[codes.Code]Code, len(grpcCodes))
	for code, grpcCode := range grpcCodes {
		out[grpcCode] = code
	}
	return out
}()

// GRPCCode maps the code onto the gRPC status space. Unmapped codes become Unknown.
func (c Code) GRPCCode() codes.Code {
	if grpcCode, ok := grpcCodes[c]; ok {
		return grpcCode
	}
	return codes.Unknown
}

// ToGRPCError converts err into a status error for the transport edge.
// Status errors pass through untouched.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var coded *Error
	if As(err, &coded) {
		return status.Error(coded.Code.GRPCCode(), coded.Message)
	}
	return status.Error(codes.Internal, err.Error())
}

// FromGRPCError turns a status error received by a client back into an *Error
func FromGRPCError(err error) error {
	st, ok := status.FromError(err)
	if err == nil || !ok {
		return err
	}

	code, known := fromGRPCCodes[st.Code()]
	if !known {
		code = CodeInternal
	}
	return New(code, st.Message())
}
