// Package handlers adapts API-Gateway proxy events to the service layer and
// maps operation outcomes to HTTP status codes.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/dmitrijs2005/trainspotter/internal/identity"
	"github.com/dmitrijs2005/trainspotter/internal/journeys"
	"github.com/dmitrijs2005/trainspotter/internal/logging"
	"github.com/dmitrijs2005/trainspotter/internal/spottings"
)

// Mux routes proxy events to the right handler by resource path and method.
type Mux struct {
	identity  *identity.Service
	journeys  *journeys.Service
	spottings *spottings.Service
	logger    logging.Logger
}

func NewMux(id *identity.Service, j *journeys.Service, sp *spottings.Service, logger logging.Logger) *Mux {
	return &Mux{identity: id, journeys: j, spottings: sp, logger: logger}
}

// Handle is the single Lambda entry point.
func (m *Mux) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod + " " + req.Resource {
	case "POST /user/signup":
		return m.handleSignup(ctx, req), nil
	case "POST /user/login":
		return m.handleLogin(ctx, req), nil
	case "POST /user/logout":
		return m.handleLogout(ctx, req), nil
	case "GET /user/session":
		return m.handleValidateSession(ctx, req), nil
	case "POST /spottings":
		return m.handleNewSpotting(ctx, req), nil
	case "GET /spottings":
		return m.handleListSpottings(ctx, req), nil
	case "POST /journeys":
		return m.handleNewJourney(ctx, req), nil
	case "GET /journeys":
		return m.handleListJourneys(ctx, req), nil
	default:
		return respond(http.StatusNotFound, map[string]any{"message": "unknown route"}), nil
	}
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(req events.APIGatewayProxyRequest) string {
	auth := req.Headers["Authorization"]
	if auth == "" {
		auth = req.Headers["authorization"]
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func decodeBody(req events.APIGatewayProxyRequest, dest any) bool {
	if req.Body == "" {
		return false
	}
	return json.Unmarshal([]byte(req.Body), dest) == nil
}

func respond(status int, body any) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err == nil {
			resp.Body = string(b)
		}
	}
	return resp
}
