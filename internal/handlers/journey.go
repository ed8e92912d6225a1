package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/trainspotter/internal/common"
)

func (m *Mux) handleNewJourney(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body map[string]any
	if !decodeBody(req, &body) || len(body) == 0 {
		return respond(http.StatusBadRequest, nil)
	}
	for _, field := range []string{"username", "train_number", "from"} {
		if _, ok := body[field]; !ok {
			return respond(http.StatusBadRequest, nil)
		}
	}

	id := uuid.NewString()
	if err := m.journeys.Create(ctx, id, body); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return respond(http.StatusBadRequest, nil)
		}
		return respond(http.StatusInternalServerError, nil)
	}
	body["_id"] = id
	return respond(http.StatusCreated, body)
}

func (m *Mux) handleListJourneys(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	includeInactive := req.QueryStringParameters["include_inactive"] == "true"

	res, err := m.journeys.List(ctx, includeInactive)
	if err != nil {
		return respond(http.StatusInternalServerError, nil)
	}
	return respond(http.StatusOK, res)
}
