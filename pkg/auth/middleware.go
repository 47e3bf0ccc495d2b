package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type claimsKey struct{}

// ContextWithClaims attaches validated claims to ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by the auth interceptor.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

// Policy maps full gRPC method names to the roles allowed to call them. A
// caller needs any one of the listed roles. Methods without an entry are open
// to every authenticated caller.
type Policy map[string][]string

// Allows reports whether claims satisfy the policy for method.
func (p Policy) Allows(method string, claims *Claims) bool {
	roles, restricted := p[method]
	if !restricted {
		return true
	}
	for _, r := range roles {
		if claims.HasRole(r) {
			return true
		}
	}
	return false
}

// BearerToken extracts the token from the incoming authorization metadata.
// The scheme is matched case-insensitively.
func BearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing authorization header")
	}
	scheme, token, found := strings.Cut(values[0], " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", status.Error(codes.Unauthenticated, "authorization header must be 'Bearer <token>'")
	}
	return strings.TrimSpace(token), nil
}

// UnaryAuthInterceptor validates the bearer token of every call except the
// skipped methods and attaches the claims to the handler context.
func UnaryAuthInterceptor(jwtService *JWTService, skipMethods []string) grpc.UnaryServerInterceptor {
	skip := make(map[string]struct{}, len(skipMethods))
	for _, m := range skipMethods {
		skip[m] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := skip[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		token, err := BearerToken(ctx)
		if err != nil {
			return nil, err
		}
		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		return handler(ContextWithClaims(ctx, claims), req)
	}
}

// RequireRoles enforces policy on calls that already passed
// UnaryAuthInterceptor.
func RequireRoles(policy Policy) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, restricted := policy[info.FullMethod]; !restricted {
			return handler(ctx, req)
		}

		claims, ok := ClaimsFromContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "no claims in context")
		}
		if !policy.Allows(info.FullMethod, claims) {
			return nil, status.Errorf(codes.PermissionDenied, "%s requires one of the roles %v", info.FullMethod, policy[info.FullMethod])
		}
		return handler(ctx, req)
	}
}
