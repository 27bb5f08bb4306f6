package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jaekwang-park/todo-web/internal/htmx"
)

// ErrUserNotFound is returned by UserResolver when no user matches the given Cognito sub.
var ErrUserNotFound = errors.New("user not found")

const (
	// IDTokenCookie carries the Cognito ID token for browser sessions.
	IDTokenCookie = "id_token"
	// AccessTokenCookie carries the Cognito access token used for sign out.
	AccessTokenCookie = "access_token"

	// DevUserID is used in dev mode when no X-User-ID header is sent.
	DevUserID = "dev-user"

	SignInPath = "/signin"

	// AuthErrorHeader carries the error code of a failed credential request.
	AuthErrorHeader = "X-Auth-Error"
)

// UserResolver resolves a Cognito sub claim to a user ID.
// Implementations must return ErrUserNotFound (or a wrapped form) when the user does not exist.
type UserResolver interface {
	ResolveUserID(ctx context.Context, cognitoSub string) (string, error)
}

type AuthConfig struct {
	DevMode      bool
	JWKSClient   *JWKSClient
	Issuer       string
	AppClientID  string
	UserResolver UserResolver
}

type Auth struct {
	cfg AuthConfig
}

func NewAuth(cfg AuthConfig) (*Auth, error) {
	if !cfg.DevMode {
		if cfg.UserResolver == nil {
			return nil, fmt.Errorf("middleware: UserResolver is required when DevMode is false")
		}
		if cfg.JWKSClient == nil {
			return nil, fmt.Errorf("middleware: JWKSClient is required when DevMode is false")
		}
	}
	return &Auth{cfg: cfg}, nil
}

// IsPublicPath reports whether p can be served without a session.
func IsPublicPath(p string) bool {
	cleanPath := path.Clean(p)
	switch cleanPath {
	case "/", "/health", SignInPath, "/signup", "/confirm":
		return true
	}
	return strings.HasPrefix(cleanPath, "/api/auth/")
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.DevMode {
			a.handleDevMode(w, r, next)
			return
		}

		a.handleJWT(w, r, next)
	})
}

func (a *Auth) handleDevMode(w http.ResponseWriter, r *http.Request, next http.Handler) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = DevUserID
	}

	ctx := SetUserID(r.Context(), userID)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// tokenFromRequest prefers a bearer header and falls back to the session cookie.
func tokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", false
		}
		tok := strings.TrimPrefix(authHeader, "Bearer ")
		return tok, tok != ""
	}

	c, err := r.Cookie(IDTokenCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (a *Auth) handleJWT(w http.ResponseWriter, r *http.Request, next http.Handler) {
	tokenStr, ok := tokenFromRequest(r)
	if !ok {
		a.deny(w, r, "sign in required")
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid header not found")
		}

		return a.cfg.JWKSClient.GetKey(kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithAudience(a.cfg.AppClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		slog.DebugContext(r.Context(), "session token rejected", "error", err)
		a.deny(w, r, "invalid or expired token")
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		a.deny(w, r, "invalid token claims")
		return
	}

	if use, _ := claims["token_use"].(string); use != "" && use != "id" {
		a.deny(w, r, "id token required")
		return
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		a.deny(w, r, "sub claim not found")
		return
	}

	userID, err := a.cfg.UserResolver.ResolveUserID(r.Context(), sub)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			a.deny(w, r, "user not found")
		} else {
			slog.ErrorContext(r.Context(), "user resolution failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	ctx := SetUserID(r.Context(), userID)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// deny answers an unauthenticated request in the shape its caller expects:
// HTMX gets a client redirect, API clients get JSON, browsers get a 303.
func (a *Auth) deny(w http.ResponseWriter, r *http.Request, message string) {
	switch {
	case htmx.IsRequest(r):
		htmx.Redirect(w, SignInPath)
		w.WriteHeader(http.StatusUnauthorized)
	case strings.HasPrefix(path.Clean(r.URL.Path), "/api/"):
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
	default:
		http.Redirect(w, r, SignInPath, http.StatusSeeOther)
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// CognitoJWKSURL returns the JWKS URL for the given Cognito User Pool.
func CognitoJWKSURL(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json", region, userPoolID)
}

// CognitoIssuer returns the expected issuer for the given Cognito User Pool.
func CognitoIssuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}
