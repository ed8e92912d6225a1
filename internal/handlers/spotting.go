package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/dmitrijs2005/trainspotter/internal/common"
)

func (m *Mux) handleNewSpotting(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body map[string]any
	if !decodeBody(req, &body) || len(body) == 0 {
		return respond(http.StatusBadRequest, nil)
	}
	if _, ok := body["username"]; !ok {
		return respond(http.StatusBadRequest, nil)
	}
	if _, ok := body["spotting_category"]; !ok {
		return respond(http.StatusBadRequest, nil)
	}

	id, err := m.spottings.NextID(ctx)
	if err != nil {
		m.logger.Error(ctx, "spotting id derivation failed", "op", "new_spotting_handler", "err", err)
		return respond(http.StatusInternalServerError, nil)
	}

	if err := m.spottings.Create(ctx, id, body); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return respond(http.StatusBadRequest, nil)
		}
		return respond(http.StatusInternalServerError, nil)
	}
	body["_id"] = id
	return respond(http.StatusCreated, body)
}

func (m *Mux) handleListSpottings(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	includeInactive := req.QueryStringParameters["include_inactive"] == "true"

	res, err := m.spottings.List(ctx, includeInactive)
	if err != nil {
		return respond(http.StatusInternalServerError, nil)
	}
	return respond(http.StatusOK, res)
}
