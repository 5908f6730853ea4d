package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"shop-relay/errors"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Classify maps a generation failure onto ErrGenerationAuth, ErrGenerationQuota or ErrGeneration,
// keeping the original error in the chain.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, errors.ErrGeneration) ||
		stderrors.Is(err, errors.ErrGenerationAuth) ||
		stderrors.Is(err, errors.ErrGenerationQuota) {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", errors.ErrGeneration, err)
	}

	if apiErr, ok := apierror.FromError(err); ok {
		if kind := fromHTTP(apiErr.HTTPCode()); kind != nil {
			return fmt.Errorf("%w: %w", kind, err)
		}
		if kind := fromCode(apiErr.GRPCStatus().Code()); kind != nil {
			return fmt.Errorf("%w: %w", kind, err)
		}
	}
	if st, ok := status.FromError(err); ok {
		if kind := fromCode(st.Code()); kind != nil {
			return fmt.Errorf("%w: %w", kind, err)
		}
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "api key"), strings.Contains(message, "api_key"):
		return fmt.Errorf("%w: %w", errors.ErrGenerationAuth, err)
	case strings.Contains(message, "quota"), strings.Contains(message, "resource exhausted"):
		return fmt.Errorf("%w: %w", errors.ErrGenerationQuota, err)
	}
	return fmt.Errorf("%w: %w", errors.ErrGeneration, err)
}

func fromHTTP(code int) error {
	switch code {
	case http.StatusTooManyRequests:
		return errors.ErrGenerationQuota
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrGenerationAuth
	}
	return nil
}

func fromCode(code codes.Code) error {
	switch code {
	case codes.ResourceExhausted:
		return errors.ErrGenerationQuota
	case codes.Unauthenticated, codes.PermissionDenied:
		return errors.ErrGenerationAuth
	}
	return nil
}
