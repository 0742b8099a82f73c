package grpc

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindCodes = map[common.Kind]codes.Code{
	common.KindUnauthorized:  codes.Unauthenticated,
	common.KindForbidden:     codes.PermissionDenied,
	common.KindBadRequest:    codes.InvalidArgument,
	common.KindUnprocessable: codes.InvalidArgument,
	common.KindInternal:      codes.Internal,
}

// fail converts err into a gRPC status. Only the client-facing message
// leaves the server; internal causes are logged.
func (s *GRPCServer) fail(ctx context.Context, err error) error {
	e := common.AsError(err)

	code, ok := kindCodes[e.Kind]
	if !ok {
		code = codes.Internal
	}
	if code == codes.Internal {
		s.logger.Error(ctx, "request failed", "error", err)
	}

	msg := e.Message
	if fields, ok := e.Data.(api.FieldErrors); ok {
		msg = describeFields(msg, fields)
	}
	return status.Error(code, msg)
}

func describeFields(msg string, fields api.FieldErrors) string {
	var b strings.Builder
	b.WriteString(msg)
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&b, "; %s: %s", k, fields[k])
	}
	return b.String()
}
