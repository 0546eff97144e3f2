package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"bitid/internal/identity/service"
	"bitid/internal/identity/store"
	"bitid/internal/jwttoken"
)

type IdentityHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

func (s *IdentityHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := service.New(context.Background(), store.NewMemoryStore(), service.WithLogger(logger))
	s.Require().NoError(err)

	tokens := jwttoken.NewJWTService("test-signing-key", "bitid")
	h := New(svc, tokens, tokens, logger)

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *IdentityHandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *IdentityHandlerSuite) TestSignup() {
	s.Run("creates the identity and returns a usable token", func() {
		w := s.do(http.MethodPost, "/auth/signup", "", map[string]string{
			"name":          "Nadia",
			"username":      "nadia",
			"walletAddress": "bc1qnadia",
		})
		s.Require().Equal(http.StatusCreated, w.Code)

		var resp struct {
			User struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"user"`
			AccessToken string `json:"accessToken"`
		}
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("nadia", resp.User.Username)
		s.NotEmpty(resp.AccessToken)

		me := s.do(http.MethodGet, "/users/me", resp.AccessToken, nil)
		s.Require().Equal(http.StatusOK, me.Code)
	})

	s.Run("rejects a missing wallet address", func() {
		w := s.do(http.MethodPost, "/auth/signup", "", map[string]string{"name": "No Wallet"})
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects a duplicate wallet with a conflict", func() {
		first := s.do(http.MethodPost, "/auth/signup", "", map[string]string{"walletAddress": "bc1qdup"})
		s.Require().Equal(http.StatusCreated, first.Code)

		second := s.do(http.MethodPost, "/auth/signup", "", map[string]string{"walletAddress": "BC1QDUP"})
		s.Equal(http.StatusConflict, second.Code)
	})
}

func (s *IdentityHandlerSuite) TestLogin() {
	s.Run("known wallet logs in", func() {
		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{
			"walletAddress": "bc1q9h805z6vkn87zx584ngnj88tn4vsp7hdzwqf45",
		})
		s.Require().Equal(http.StatusOK, w.Code)

		var resp struct {
			User struct {
				Username string `json:"username"`
			} `json:"user"`
			AccessToken string `json:"accessToken"`
		}
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("alexbtc", resp.User.Username)
		s.NotEmpty(resp.AccessToken)
	})

	s.Run("unknown wallet is not found", func() {
		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"walletAddress": "bc1qunknown"})
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("empty body is a bad request", func() {
		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *IdentityHandlerSuite) TestAuthenticatedRoutes() {
	login := s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"walletAddress": "bc1q9h805z6vkn87zx584ngnj88tn4vsp7hdzwqf45",
	})
	s.Require().Equal(http.StatusOK, login.Code)

	var session struct {
		AccessToken string `json:"accessToken"`
	}
	s.Require().NoError(json.Unmarshal(login.Body.Bytes(), &session))

	s.Run("requests without a token are unauthorized", func() {
		s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/users/me", "", nil).Code)
		s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/auth/logout", "", nil).Code)
	})

	s.Run("patch merges only the supplied fields", func() {
		w := s.do(http.MethodPatch, "/users/me", session.AccessToken, map[string]string{"name": "Alexander"})
		s.Require().Equal(http.StatusOK, w.Code)

		var user struct {
			Name     string `json:"name"`
			Username string `json:"username"`
		}
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
		s.Equal("Alexander", user.Name)
		s.Equal("alexbtc", user.Username)
	})

	s.Run("logout clears the session", func() {
		s.Equal(http.StatusNoContent, s.do(http.MethodPost, "/auth/logout", session.AccessToken, nil).Code)
	})
}

func TestDeviceSummary(t *testing.T) {
	cases := []struct {
		name string
		ua   string
		want string
	}{
		{"empty", "", ""},
		{
			"desktop browser",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			"Chrome on Windows 10",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deviceSummary(tc.ua); got != tc.want {
				t.Errorf("deviceSummary(%q) = %q, want %q", tc.ua, got, tc.want)
			}
		})
	}
}
