package grpcsvc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

// CodeOf сопоставляет доменную ошибку коду gRPC.
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}

	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case domain.IsNotFound(err):
		return codes.NotFound
	case errors.Is(err, domain.ErrUnknownOrderStatus),
		errors.Is(err, domain.ErrOrderIDRequired),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrAddressRequired),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidDeliveryType):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrCartEmpty),
		errors.Is(err, domain.ErrDeliveryUnavailable):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrNotAuthenticated):
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}
