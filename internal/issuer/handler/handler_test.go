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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	identityservice "bitid/internal/identity/service"
	"bitid/internal/identity/store"
	"bitid/internal/issuer"
	"bitid/internal/jwttoken"
)

type IssuerHandlerSuite struct {
	suite.Suite
	router chi.Router
	tokens *jwttoken.JWTService
}

func TestIssuerHandlerSuite(t *testing.T) {
	suite.Run(t, new(IssuerHandlerSuite))
}

func (s *IssuerHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	identity, err := identityservice.New(context.Background(), store.NewMemoryStore(), identityservice.WithLogger(logger))
	s.Require().NoError(err)

	s.tokens = jwttoken.NewJWTService("test-signing-key", "bitid")
	h := New(issuer.New(identity, issuer.WithLogger(logger)), s.tokens, logger)

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *IssuerHandlerSuite) TestTemplatesArePublic() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/credentials/templates", nil))

	s.Require().Equal(http.StatusOK, w.Code)

	var tpls []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tpls))
	s.Len(tpls, 4)
}

func (s *IssuerHandlerSuite) TestIssue() {
	token, err := s.tokens.GenerateAccessToken("u_1", time.Hour)
	s.Require().NoError(err)

	s.Run("requires authentication", func() {
		req := httptest.NewRequest(http.MethodPost, "/credentials", bytes.NewReader([]byte(`{}`)))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("issues a templated credential to the caller", func() {
		body := []byte(`{"type": "KYCVerification", "metadata": {"level": 2}}`)
		req := httptest.NewRequest(http.MethodPost, "/credentials", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Require().Equal(http.StatusCreated, w.Code)

		var user struct {
			Credentials []struct {
				Type     string `json:"type"`
				Name     string `json:"name"`
				Status   string `json:"status"`
				Verified bool   `json:"verified"`
				Metadata struct {
					Level int `json:"level"`
				} `json:"metadata"`
			} `json:"credentials"`
		}
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
		s.Require().NotEmpty(user.Credentials)

		issued := user.Credentials[len(user.Credentials)-1]
		s.Equal("KYCVerification", issued.Type)
		s.Equal("KYC Level 1", issued.Name)
		s.Equal("active", issued.Status)
		s.True(issued.Verified)
		s.Equal(2, issued.Metadata.Level)
	})

	s.Run("rejects a missing type", func() {
		req := httptest.NewRequest(http.MethodPost, "/credentials", bytes.NewReader([]byte(`{"name": "x"}`)))
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}
