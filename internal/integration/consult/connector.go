// Package consult talks to the external consultation backend that performs
// the AI inference and decides stage transitions.
package consult

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/config"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/integration/common"
	pkghttp "github.com/hukumku/consult-gateway/pkg/http"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.ConsultConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ConsultConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// SendMessage sends one conversation turn and returns the backend's
// authoritative stage and content update. Retried only on transport
// failures and 5xx; a 4xx is final.
func (c *Connector) SendMessage(ctx context.Context, req *entity.SendMessageRequest) (
	*entity.SendMessageResponse, error,
) {
	ctxzap.Info(ctx, "sending consultation turn",
		zap.String("session_id", req.SessionID),
		zap.Int("clarification_answers", len(req.ClarificationAnswers)),
	)

	var resp entity.SendMessageResponse
	err := c.do(ctx, c.config.SendMessageEndpoint, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("send message failed: %w", err)
	}

	if resp.SessionID == "" || resp.AIResponse == "" {
		return nil, fmt.Errorf("invalid send message response: missing session_id or ai_response")
	}
	if err := resp.ConversationStage.Validate(); err != nil {
		return nil, fmt.Errorf("invalid send message response: %w", err)
	}

	ctxzap.Info(ctx, "consultation turn completed",
		zap.String("session_id", resp.SessionID),
		zap.String("stage", string(resp.ConversationStage)),
		zap.Int("offerings", len(resp.FeatureOfferings)),
		zap.Int("questions", len(resp.Questions)),
	)

	return &resp, nil
}

// ExecuteFeature dispatches a feature-execution request keyed by
// (session_id, feature_id).
func (c *Connector) ExecuteFeature(ctx context.Context, req *entity.ExecuteFeatureRequest) (
	*entity.ExecuteFeatureResponse, error,
) {
	ctxzap.Info(ctx, "executing feature via consultation backend",
		zap.String("session_id", req.SessionID),
		zap.String("feature_id", req.FeatureID),
	)

	var resp entity.ExecuteFeatureResponse
	err := c.do(ctx, c.config.ExecuteFeatureEndpoint, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("execute feature failed: %w", err)
	}

	ctxzap.Info(ctx, "feature executed successfully",
		zap.String("feature_id", req.FeatureID),
		zap.Int("result_bytes", len(resp.Result)),
	)

	return &resp, nil
}

func (c *Connector) do(ctx context.Context, endpoint string, reqBody, respBody any) error {
	opts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(pkghttp.IsRetryable),
	)

	return retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, endpoint, reqBody, respBody)
	}, opts...)
}
