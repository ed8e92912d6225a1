package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/dmitrijs2005/trainspotter/internal/common"
)

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (m *Mux) handleSignup(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body credentialsBody
	if !decodeBody(req, &body) {
		return respond(http.StatusBadRequest, nil)
	}
	if body.Username == "" || body.Password == "" || body.Email == "" {
		return respond(http.StatusBadRequest, nil)
	}

	account, err := m.identity.SignUp(ctx, body.Username, body.Password, body.Email)
	switch {
	case err == nil:
		return respond(http.StatusCreated, account)
	case errors.Is(err, common.ErrorAlreadyExists):
		return respond(http.StatusConflict, nil)
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorInvalidUsername):
		return respond(http.StatusBadRequest, nil)
	default:
		return respond(http.StatusInternalServerError, nil)
	}
}

func (m *Mux) handleLogin(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body credentialsBody
	if !decodeBody(req, &body) {
		return respond(http.StatusBadRequest, nil)
	}
	if body.Username == "" || body.Password == "" {
		return respond(http.StatusBadRequest, nil)
	}

	session, err := m.identity.Login(ctx, body.Username, body.Password)
	switch {
	case err == nil:
		return respond(http.StatusOK, map[string]any{
			"key":              session.Token,
			"expiry_timestamp": session.ExpiryTimestamp,
		})
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorInvalidUsername):
		return respond(http.StatusNotFound, nil)
	case errors.Is(err, common.ErrorUnauthorized):
		return respond(http.StatusUnauthorized, nil)
	case errors.Is(err, common.ErrorValidation):
		return respond(http.StatusBadRequest, nil)
	default:
		return respond(http.StatusInternalServerError, nil)
	}
}

func (m *Mux) handleLogout(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	token := bearerToken(req)
	if token == "" {
		return respond(http.StatusBadRequest, nil)
	}

	if err := m.identity.Logout(ctx, token); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return respond(http.StatusBadRequest, nil)
		}
		return respond(http.StatusInternalServerError, nil)
	}
	return respond(http.StatusOK, nil)
}

func (m *Mux) handleValidateSession(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	token := bearerToken(req)
	if token == "" {
		return respond(http.StatusBadRequest, nil)
	}
	expected := req.QueryStringParameters["username"]

	session, err := m.identity.ValidateSession(ctx, token, expected)
	if err != nil {
		return respond(http.StatusUnauthorized, nil)
	}
	return respond(http.StatusOK, map[string]any{
		"username":         session.Username,
		"expiry_timestamp": session.ExpiryTimestamp,
	})
}
